package chunkproto

// Параметры протокола, общие для сервера и клиента.
const (
	UploadPath         = "/upload"
	HeaderContentRange = "Content-Range"
	HeaderChunkID      = "File-Chunk-Id"
	HeaderChunkSize    = "File-Chunk-Size"
	DefaultFileField   = "file"
	DefaultChunkSize   = 500000
	DefaultChunkID     = "unique-file-id"
)
