package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taksi8637-pixel/taksi2/pkg/gallery"
	"github.com/taksi8637-pixel/taksi2/pkg/gate"
	"github.com/taksi8637-pixel/taksi2/pkg/middleware"
	"github.com/taksi8637-pixel/taksi2/pkg/phones"
	"github.com/taksi8637-pixel/taksi2/pkg/testimonial"
	"github.com/taksi8637-pixel/taksi2/pkg/toast"
)

// uploadFormField is the multipart field carrying the selected file.
const uploadFormField = "file"

const msgComplaint = "Şikayetiniz alındı. En kısa sürede size dönüş yapacağız."

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type phoneRequest struct {
	Number string `json:"number"`
	Label  string `json:"label"`
}

type testimonialRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type complaintRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// contentResponse is the full derived page state in one payload.
type contentResponse struct {
	Phones       []phones.Record     `json:"phones"`
	Primary      phones.Record       `json:"primary"`
	CallLink     string              `json:"call_link"`
	WhatsAppLink string              `json:"whatsapp_link"`
	Gallery      []string            `json:"gallery"`
	Testimonials []testimonial.Entry `json:"testimonials"`
	Authorized   bool                `json:"authorized"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.gate.Login(req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authorized": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Logout()
	writeJSON(w, http.StatusOK, map[string]bool{"authorized": false})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authorized": s.gate.Authorized()})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	primary := s.phones.Primary()
	writeJSON(w, http.StatusOK, contentResponse{
		Phones:       s.phones.List(),
		Primary:      primary,
		CallLink:     phones.CallLink(primary.Number),
		WhatsAppLink: phones.WhatsAppLink(primary.Number),
		Gallery:      s.gallery.Images(),
		Testimonials: s.testimonials.List(),
		Authorized:   s.gate.Authorized(),
	})
}

func (s *Server) handlePhoneList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.phones.List())
}

func (s *Server) handlePhoneAdd(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := s.phones.Add(r.Context(), req.Number, req.Label)
	middleware.RecordEdit("phones", err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.ContentChanged("phones")
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handlePhoneUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, phones.ErrNotFound)
		return
	}
	var req phoneRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err = s.phones.Update(r.Context(), id, req.Number, req.Label)
	middleware.RecordEdit("phones", err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.ContentChanged("phones")
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handlePhoneRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, phones.ErrNotFound)
		return
	}
	err = s.phones.Remove(r.Context(), id)
	middleware.RecordEdit("phones", err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.ContentChanged("phones")
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (s *Server) handleGalleryList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gallery.Images())
}

// handleGalleryUpload accepts a multipart upload and stages it. The file
// bytes must be read before the handler returns, so they are buffered here
// and handed to the registry's asynchronous decode as a reader.
func (s *Server) handleGalleryUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, gallery.MaxUploadSize+1024*1024)
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unreadable file"))
		return
	}

	src := gallery.Source{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      bytes.NewReader(data),
	}
	err = s.gallery.Select(r.Context(), src)
	middleware.RecordEdit("gallery", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"staged": true})
}

func (s *Server) handleGalleryPending(w http.ResponseWriter, r *http.Request) {
	pending, ok := s.gallery.Pending()
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": pending,
		"staged":  ok,
	})
}

func (s *Server) handleGalleryCommit(w http.ResponseWriter, r *http.Request) {
	err := s.gallery.Commit(r.Context())
	middleware.RecordEdit("gallery", err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.ContentChanged("gallery")
	writeJSON(w, http.StatusOK, map[string]bool{"committed": true})
}

func (s *Server) handleGalleryCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.gallery.Cancel(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

func (s *Server) handleGalleryRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, gallery.ErrOutOfRange)
		return
	}
	err = s.gallery.RemoveAt(r.Context(), index)
	middleware.RecordEdit("gallery", err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.ContentChanged("gallery")
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (s *Server) handleTestimonialList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.testimonials.List())
}

func (s *Server) handleTestimonialAdd(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.testimonials.Add(req.Name, req.Rating, req.Comment) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("name and comment are required"))
		return
	}
	s.hub.ContentChanged("testimonials")
	writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
}

// handleComplaint acknowledges a complaint form submission. Complaints are
// not stored; the acknowledgement toast is the whole interaction.
func (s *Server) handleComplaint(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.logger.Info("complaint received", "name", req.Name, "phone", req.Phone)
	s.hub.Notify(toast.LevelSuccess, msgComplaint)
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// decodeBody decodes a JSON request body, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps core sentinel errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gate.ErrUnauthorized), errors.Is(err, gate.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, phones.ErrNotFound), errors.Is(err, gallery.ErrOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, phones.ErrEmptyInput), errors.Is(err, phones.ErrLastRecord),
		errors.Is(err, gallery.ErrTooLarge):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, gallery.ErrNoPending):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorBody(err.Error()))
}
