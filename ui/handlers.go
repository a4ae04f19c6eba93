package ui

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gomarkdown/markdown"

	"sheetstack/adapters/sheet"
	"sheetstack/domain/compile"
	"sheetstack/domain/table"
	"sheetstack/internal/errors"
	"sheetstack/internal/profile"
	"sheetstack/internal/session"
)

const sessionCookie = "sheetstack_session"

// previewLimit caps how many compiled rows the index page renders.
const previewLimit = 200

type ctxKey string

const sessionCtxKey ctxKey = "session"

// withSession resolves the caller's session from the cookie, creating one
// when absent or expired, and rebinds the cookie to the live session ID.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cookieID string
		if c, err := r.Cookie(sessionCookie); err == nil {
			cookieID = c.Value
		}

		sess := a.sessions.GetOrCreate(cookieID)
		if sess.ID.String() != cookieID {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sess.ID.String(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionCtxKey).(*session.Session)
}

// JSON helpers

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[App] Failed to encode response: %v", err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type mismatchBody struct {
	Missing   []string `json:"missing"`
	Extra     []string `json:"extra"`
	Reordered bool     `json:"reordered"`
	Expected  []string `json:"expected"`
	Incoming  []string `json:"incoming"`
}

type errorResponse struct {
	Error    errorBody     `json:"error"`
	Mismatch *mismatchBody `json:"mismatch,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.CodeUnsupportedFormat, errors.CodeReadError, errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeSchemaMismatch, errors.CodeDuplicateColumn:
		status = http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}

	resp := errorResponse{Error: errorBody{Code: code, Message: err.Error()}}
	if sm, ok := errors.AsSchemaMismatch(err); ok {
		resp.Mismatch = &mismatchBody{
			Missing:   sm.Match.Missing,
			Extra:     sm.Match.Extra,
			Reordered: sm.Match.Reordered,
			Expected:  sm.Expected,
			Incoming:  sm.Incoming,
		}
	}
	writeJSON(w, status, resp)
}

// Upload

type uploadResponse struct {
	Accepted     bool     `json:"accepted"`
	Filename     string   `json:"filename"`
	RowsAdded    int      `json:"rows_added"`
	Files        int      `json:"files"`
	TotalRows    int      `json:"total_rows"`
	TotalColumns int      `json:"total_columns"`
	Columns      []string `json:"columns"`
}

// handleUpload ingests one file: decode, then seed or append depending on
// whether the session's schema is already locked. A rejected file changes
// nothing.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.Server.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.InvalidInput("no file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.InvalidInput("upload exceeds the size limit or was cut short"))
		return
	}

	t, err := sheet.Read(data, header.Filename)
	if err != nil {
		log.Printf("[Upload] Rejected %q: %v", header.Filename, err)
		writeError(w, err)
		return
	}

	resp := uploadResponse{Filename: header.Filename, RowsAdded: t.RowCount()}
	err = sessionFrom(r).Do(func(c *compile.Compiler) error {
		var opErr error
		if c.Seeded() {
			opErr = c.Append(t, header.Filename)
		} else {
			opErr = c.Seed(t, header.Filename)
		}
		if opErr != nil {
			return opErr
		}
		resp.Accepted = true
		resp.Files = c.FileCount()
		resp.TotalRows = c.TotalRows()
		resp.TotalColumns = c.TotalColumns()
		resp.Columns = c.ExpectedColumns()
		return nil
	})
	if err != nil {
		log.Printf("[Upload] Rejected %q: %v", header.Filename, err)
		writeError(w, err)
		return
	}

	log.Printf("[Upload] Accepted %q (%d rows, %d files total)", header.Filename, resp.RowsAdded, resp.Files)
	writeJSON(w, http.StatusOK, resp)
}

// Status

type statusResponse struct {
	Seeded          bool                    `json:"seeded"`
	Files           int                     `json:"files"`
	TotalRows       int                     `json:"total_rows"`
	TotalColumns    int                     `json:"total_columns"`
	ExpectedColumns []string                `json:"expected_columns,omitempty"`
	Uploads         []compile.UploadRecord  `json:"uploads"`
	Columns         []profile.ColumnProfile `json:"columns,omitempty"`
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	var snapshot *table.Table
	_ = sessionFrom(r).Do(func(c *compile.Compiler) error {
		resp.Seeded = c.Seeded()
		resp.Files = c.FileCount()
		resp.TotalRows = c.TotalRows()
		resp.TotalColumns = c.TotalColumns()
		resp.ExpectedColumns = c.ExpectedColumns()
		resp.Uploads = c.Uploads()
		snapshot = c.Snapshot()
		return nil
	})
	if resp.Uploads == nil {
		resp.Uploads = []compile.UploadRecord{}
	}
	if snapshot != nil {
		resp.Columns = profile.Columns(snapshot)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	_ = sess.Do(func(c *compile.Compiler) error {
		c.Reset()
		return nil
	})
	log.Printf("[Reset] Session %s cleared", sess.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// Download

func (a *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	var snapshot *table.Table
	_ = sessionFrom(r).Do(func(c *compile.Compiler) error {
		snapshot = c.Snapshot()
		return nil
	})
	if snapshot == nil {
		writeError(w, errors.NotFound("compiled table"))
		return
	}

	blob, err := sheet.Write(snapshot)
	if err != nil {
		writeError(w, errors.Wrap(err, "failed to export compiled table"))
		return
	}

	name := sheet.EnsureXLSX(r.URL.Query().Get("filename"))
	w.Header().Set("Content-Type", sheet.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := w.Write(blob); err != nil {
		log.Printf("[Download] Failed to stream %q: %v", name, err)
	}
}

// Pages

type indexView struct {
	Seeded       bool
	Files        int
	TotalRows    int
	TotalColumns int
	Columns      []string
	Uploads      []compile.UploadRecord
	Preview      [][]string
	PreviewLimit int
	DefaultName  string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := indexView{
		PreviewLimit: previewLimit,
		DefaultName:  sheet.DefaultFilename(time.Now()),
	}

	var snapshot *table.Table
	_ = sessionFrom(r).Do(func(c *compile.Compiler) error {
		view.Seeded = c.Seeded()
		view.Files = c.FileCount()
		view.TotalRows = c.TotalRows()
		view.TotalColumns = c.TotalColumns()
		view.Uploads = c.Uploads()
		snapshot = c.Snapshot()
		return nil
	})

	if snapshot != nil {
		view.Columns = snapshot.Columns
		limit := len(snapshot.Rows)
		if limit > previewLimit {
			limit = previewLimit
		}
		view.Preview = make([][]string, 0, limit)
		for _, row := range snapshot.Rows[:limit] {
			cells := make([]string, len(snapshot.Columns))
			for i, col := range snapshot.Columns {
				cells[i] = row[col]
			}
			view.Preview = append(view.Preview, cells)
		}
	}

	a.renderTemplate(w, "index.html", view)
}

func (a *App) handleHelp(w http.ResponseWriter, r *http.Request) {
	md, err := embeddedFiles.ReadFile("help.md")
	if err != nil {
		http.Error(w, "Help not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	if _, err := w.Write(markdown.ToHTML(md, nil, nil)); err != nil {
		log.Printf("[App] Failed to write help page: %v", err)
	}
}
