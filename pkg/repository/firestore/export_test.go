package firestore

// DecodeBriefData exposes brief shape normalization for tests
var DecodeBriefData = decodeBriefData
