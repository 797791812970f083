// Package resthttp реализует HTTP-обвязку сервиса приёма файлов чанками. Основные эндпоинты:
//   - POST /upload — multipart-запрос с одним чанком; Content-Range, File-Chunk-Id и File-Chunk-Size
//     в заголовках. Отвечает {"upload_id","filePart","isLastPart","size"}.
//   - GET /files — последние собранные файлы (?limit=).
//   - GET /files/{id} — запись о собранном файле; GET /files/{id}/content — сам файл.
//   - POST /admin/gc — ручная уборка брошенных загрузок.
//   - GET /health — число и объём незавершённых загрузок; GET /metrics — Prometheus.
package resthttp
