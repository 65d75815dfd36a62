package domain

// KeyPrefix namespaces all herbadex keys in the shared database.
const KeyPrefix = "herbadex:"
