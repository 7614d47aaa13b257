package constants

import "os"

// GetOutDir is where compositions, previews and persisted tables land.
func GetOutDir() string {
	path := os.Getenv("OUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// GetMetadataEndpoint returns the DynamoDB endpoint for score metadata
// lookups. Empty means the lookup is disabled.
func GetMetadataEndpoint() string {
	return os.Getenv("METADATA_ENDPOINT")
}

// MetadataTable is the DynamoDB table holding score catalog records.
const MetadataTable = "melgen-scores"

// DefaultVelocity is the note-on velocity used when none is configured.
const DefaultVelocity = 127

// PreviewNotes caps the note messages per voice in a preview file.
const PreviewNotes = 10
