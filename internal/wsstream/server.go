package wsstream

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pspoerri/lzwpipe/internal/pipeline"
)

// maxCloseReason is the room left for text in a close frame (125-byte
// control payload minus the 2-byte code).
const maxCloseReason = 123

// Handler runs one pipeline per websocket connection: the client's messages
// are the input, the replies are the output.
type Handler struct {
	mode     pipeline.Mode
	cfg      pipeline.Config
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewHandler creates a handler for mode. A nil logger logs to stderr.
func NewHandler(mode pipeline.Mode, cfg pipeline.Config, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(os.Stderr, "[lzwserve] ", log.LstdFlags)
	}
	// Progress bars make no sense for a server.
	cfg.Progress = false
	return &Handler{
		mode: mode,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  FrameSize,
			WriteBufferSize: FrameSize,
		},
		logger: logger,
	}
}

// NewServeMux registers a compress and a decompress handler.
func NewServeMux(cfg pipeline.Config, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/compress", NewHandler(pipeline.Compress, cfg, logger))
	mux.Handle("/decompress", NewHandler(pipeline.Decompress, cfg, logger))
	return mux
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.Printf("Upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	start := time.Now()
	out := NewWriter(conn)
	st, err := pipeline.Run(h.cfg, h.mode, NewReader(conn), out)
	if err == nil {
		err = out.Close()
	}
	if err != nil {
		h.logger.Printf("%s %s: %v", h.mode, r.RemoteAddr, err)
		reason := err.Error()
		if len(reason) > maxCloseReason {
			reason = strings.ToValidUTF8(reason[:maxCloseReason], "")
		}
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, reason),
			time.Now().Add(time.Second))
		return
	}

	if h.cfg.Verbose {
		h.logger.Printf("%s %s: %d bytes in, %d bytes out in %v",
			h.mode, r.RemoteAddr, st.BytesIn, st.BytesOut, time.Since(start).Round(time.Millisecond))
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
