package ports

// ObsidianOpener defines the interface for opening documents in Obsidian
type ObsidianOpener interface {
	// OpenDocument opens the vault-relative document using the obsidian://
	// URI scheme
	OpenDocument(docPath string) error
}
