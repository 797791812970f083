package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/chunkload/internal/models"
)

type seenChunk struct {
	contentRange string
	chunkID      string
	chunkSize    string
	field        string
	filename     string
	body         []byte
}

// recordingServer запоминает каждый чанк и отвечает как сервер загрузки.
func recordingServer(t *testing.T) (*httptest.Server, func() []seenChunk) {
	t.Helper()

	var (
		mu   sync.Mutex
		seen []seenChunk
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		mr, err := r.MultipartReader()
		require.NoError(t, err)
		part, err := mr.NextPart()
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)

		mu.Lock()
		n := len(seen)
		seen = append(seen, seenChunk{
			contentRange: r.Header.Get("Content-Range"),
			chunkID:      r.Header.Get("File-Chunk-Id"),
			chunkSize:    r.Header.Get("File-Chunk-Size"),
			field:        part.FormName(),
			filename:     part.FileName(),
			body:         body,
		})
		mu.Unlock()

		_ = json.NewEncoder(w).Encode(models.UploadResult{
			UploadID: r.Header.Get("File-Chunk-Id"),
			FilePart: uint64(n),
		})
	}))
	t.Cleanup(ts.Close)

	return ts, func() []seenChunk {
		mu.Lock()
		defer mu.Unlock()
		return append([]seenChunk(nil), seen...)
	}
}

func TestUpload_SendsOrderedChunks(t *testing.T) {
	ts, seen := recordingServer(t)
	data := []byte("0123456789abcdefghij-")

	results, err := New().Upload(context.Background(), ts.URL+"/", UploadRequest{
		UploadID:  "u1",
		Filename:  "letters.txt",
		Reader:    bytes.NewReader(data),
		Size:      int64(len(data)),
		ChunkSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	chunks := seen()
	require.Len(t, chunks, 3)
	assert.Equal(t, "bytes 0-10/21", chunks[0].contentRange)
	assert.Equal(t, "bytes 10-20/21", chunks[1].contentRange)
	assert.Equal(t, "bytes 20-30/21", chunks[2].contentRange)

	var joined []byte
	for _, c := range chunks {
		assert.Equal(t, "u1", c.chunkID)
		assert.Equal(t, "10", c.chunkSize)
		assert.Equal(t, "file", c.field)
		assert.Equal(t, "letters.txt", c.filename)
		joined = append(joined, c.body...)
	}
	assert.Equal(t, data, joined)
}

func TestUpload_EmptyFileIsOneChunk(t *testing.T) {
	ts, seen := recordingServer(t)

	_, err := New().Upload(context.Background(), ts.URL, UploadRequest{
		UploadID:  "empty",
		Filename:  "empty.txt",
		Reader:    bytes.NewReader(nil),
		ChunkSize: 10,
	})
	require.NoError(t, err)

	chunks := seen()
	require.Len(t, chunks, 1)
	assert.Equal(t, "bytes 0-10/0", chunks[0].contentRange)
	assert.Empty(t, chunks[0].body)
}

func TestUpload_GeneratesUploadID(t *testing.T) {
	ts, seen := recordingServer(t)

	_, err := New().Upload(context.Background(), ts.URL, UploadRequest{
		Filename:  "a.txt",
		Reader:    strings.NewReader("abc"),
		Size:      3,
		ChunkSize: 2,
	})
	require.NoError(t, err)

	chunks := seen()
	require.Len(t, chunks, 2)
	assert.NotEmpty(t, chunks[0].chunkID)
	assert.Equal(t, chunks[0].chunkID, chunks[1].chunkID)
}

func TestUpload_InvalidRequest(t *testing.T) {
	_, err := New().Upload(context.Background(), "http://127.0.0.1:0", UploadRequest{Reader: strings.NewReader(""), ChunkSize: 0})
	assert.Error(t, err)

	_, err = New().Upload(context.Background(), "http://127.0.0.1:0", UploadRequest{Reader: strings.NewReader(""), ChunkSize: 1, Size: -1})
	assert.Error(t, err)
}

func TestUpload_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "Invalid Content-Range header: nope", http.StatusBadRequest)
	}))
	t.Cleanup(ts.Close)

	var progress bytes.Buffer
	_, err := New(WithProgress(&progress)).Upload(context.Background(), ts.URL, UploadRequest{
		UploadID:  "bad",
		Filename:  "bad.txt",
		Reader:    strings.NewReader("abc"),
		Size:      3,
		ChunkSize: 3,
	})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "Invalid Content-Range header: nope", se.Message)
	assert.Contains(t, progress.String(), "✗")
}

func TestUpload_ProgressFinishes(t *testing.T) {
	ts, _ := recordingServer(t)

	var progress bytes.Buffer
	_, err := New(WithProgress(&progress)).Upload(context.Background(), ts.URL, UploadRequest{
		UploadID:  "p",
		Filename:  "p.txt",
		Reader:    strings.NewReader("hello"),
		Size:      5,
		ChunkSize: 2,
	})
	require.NoError(t, err)

	out := progress.String()
	assert.Contains(t, out, "Uploading p.txt (p)")
	assert.Contains(t, out, "100% 5 B/5 B ✓")
}

func TestUploadAll_KeepsOrder(t *testing.T) {
	ts, seen := recordingServer(t)

	results, err := New().UploadAll(context.Background(), ts.URL, []UploadRequest{
		{UploadID: "a", Filename: "a.txt", Reader: strings.NewReader("aaaa"), Size: 4, ChunkSize: 2},
		{UploadID: "b", Filename: "b.txt", Reader: strings.NewReader("bbbbbb"), Size: 6, ChunkSize: 2},
	}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results[0], 2)
	assert.Len(t, results[1], 3)
	assert.Equal(t, "a", results[0][0].UploadID)
	assert.Equal(t, "b", results[1][0].UploadID)
	assert.Len(t, seen(), 5)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "0 B", humanBytes(0))
	assert.Equal(t, "1023 B", humanBytes(1023))
	assert.Equal(t, "1.0 KB", humanBytes(1024))
	assert.Equal(t, "1.5 MB", humanBytes(3<<19))
}
