// Package chunkproto описывает HTTP-протокол загрузки файла чанками.
//
// Каждый чанк — отдельный multipart POST на UploadPath с заголовками:
//
//	Content-Range:   bytes <start>-<end>/<size>
//	File-Chunk-Id:   <upload id>
//	File-Chunk-Size: <chunk size>
//
// end — исключающая граница: чанк k шлётся как bytes k*chunk-(k+1)*chunk/size,
// у последнего чанка end может быть больше size. Файл собирается, когда end >= size.
// Диапазоны в духе RFC 7233 с включительным концом (bytes 100000-100329/100330)
// до size не доходят, и такая загрузка не будет собрана; сервер пишет об этом
// предупреждение в лог.
//
// start должен быть кратен chunk size, end-start не больше chunk size.
package chunkproto
