package services

// AgeAt exposes the age computation to black-box tests.
var AgeAt = ageAt
