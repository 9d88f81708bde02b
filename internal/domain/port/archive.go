package port

// ArchiveWriter assembles the export archive. Paths use forward slashes;
// CreateFolder is explicit so empty folders still appear in the layout a
// downstream reconstruction pipeline expects.
type ArchiveWriter interface {
	CreateFolder(path string) error
	AddFile(path string, data []byte) error
	Finalize() error
}
