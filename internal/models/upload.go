package models

// ContentRange — разобранный заголовок Content-Range. End читается как
// исключающая граница: первый чанк размером 2000 приходит как bytes 0-2000/N.
type ContentRange struct {
	Start uint64
	End   uint64
	Size  uint64
}

// ChunkDescriptor вычисляется из заголовков каждого запроса.
type ChunkDescriptor struct {
	UploadID  string
	ChunkSize uint64
	Range     ContentRange
	PartIndex uint64
}

// UploadResult — то, что видят обработчики после middleware.
type UploadResult struct {
	UploadID   string `json:"upload_id"`
	FilePart   uint64 `json:"filePart"`
	IsLastPart bool   `json:"isLastPart"`
	Size       int64  `json:"size"`
}
