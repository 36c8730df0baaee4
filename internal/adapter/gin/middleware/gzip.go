package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	apperrors "auth-service/pkg/errors"
)

// MsgInvalidGzip is returned when a gzip-encoded request body is corrupt.
const MsgInvalidGzip = "Invalid gzip data"

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// Gzip decompresses gzip-encoded request bodies and compresses responses
// for clients that accept gzip.
func Gzip() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.Contains(c.GetHeader("Content-Encoding"), "gzip") &&
			c.Request.Body != nil && c.Request.Body != http.NoBody {
			gr := gzipReaderPool.Get().(*gzip.Reader)
			if err := gr.Reset(c.Request.Body); err != nil {
				gzipReaderPool.Put(gr)
				AbortWithError(c, apperrors.BadRequest(MsgInvalidGzip))
				return
			}

			body := &gzipBody{Reader: gr, src: c.Request.Body}
			defer body.Close()

			c.Request.Body = body
			c.Request.Header.Del("Content-Encoding")
			c.Request.Header.Del("Content-Length")
			c.Request.ContentLength = -1
		}

		if c.Request.Method == http.MethodHead || !acceptsGzip(c.GetHeader("Accept-Encoding")) {
			c.Next()
			return
		}

		gz := gzipWriterPool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)

		w := &gzipResponseWriter{ResponseWriter: c.Writer, gz: gz}
		c.Writer = w
		c.Writer.Header().Add("Vary", "Accept-Encoding")

		defer func() {
			if w.compressing {
				_ = gz.Close()
			}
			gz.Reset(io.Discard)
			gzipWriterPool.Put(gz)
			c.Writer = w.ResponseWriter
		}()

		c.Next()
	}
}

// acceptsGzip reports whether an Accept-Encoding value allows gzip.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "gzip") {
			continue
		}
		q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
		return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
	}
	return false
}

type gzipBody struct {
	*gzip.Reader
	src    io.ReadCloser
	closed bool
}

func (b *gzipBody) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	_ = b.Reader.Close()
	gzipReaderPool.Put(b.Reader)
	return b.src.Close()
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gz          *gzip.Writer
	decided     bool
	compressing bool
}

// start decides on the first write whether the response is compressed.
func (w *gzipResponseWriter) start() {
	if w.decided {
		return
	}
	w.decided = true

	h := w.Header()
	if h.Get("Content-Encoding") != "" {
		return
	}
	if s := w.Status(); s == http.StatusNoContent || s == http.StatusNotModified {
		return
	}
	h.Set("Content-Encoding", "gzip")
	h.Del("Content-Length")
	w.compressing = true
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	w.start()
	if !w.compressing {
		return w.ResponseWriter.Write(data)
	}
	return w.gz.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	if w.compressing {
		_ = w.gz.Flush()
	}
	w.ResponseWriter.Flush()
}
