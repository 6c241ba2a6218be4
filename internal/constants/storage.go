package constants

// Бакет с фотографиями квартир и комнат
const DefaultImagesBucket = "property-images"
