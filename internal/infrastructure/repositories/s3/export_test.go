package s3

// Exports for white-box tests.
//
//nolint:gochecknoglobals // test exports
var (
	HashDirectory       = hashDirectory
	WriteDirectoryTarGz = writeDirectoryTarGz
)
