package dirwatch

// Version is the current version of the dirwatch tool
const Version = "0.4.0"
