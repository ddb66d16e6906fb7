package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/common"
	"github.com/tnbsp/membership-workflow/internal/registration"
	"github.com/tnbsp/membership-workflow/internal/session"
)

const maxUploadBytes = 32 << 20

type handler struct {
	deps Deps
}

// verifyDocument accepts a multipart form with epic_number and pdf_file,
// verifies the document, and returns a session token on success. Mismatch and
// not-found produce distinct messages so the applicant knows whether to fix
// the typed number or upload a different document.
func (h *handler) verifyDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	epicNumber := r.FormValue("epic_number")
	file, header, err := r.FormFile("pdf_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "pdf_file is required")
		return
	}
	defer file.Close()

	token, err := h.deps.Registration.VerifyDocument(r.Context(), epicNumber, file, header.Filename)
	if err != nil {
		var mismatch *registration.MismatchError
		switch {
		case errors.Is(err, registration.ErrNoIdentifier):
			writeError(w, http.StatusBadRequest, "no EPIC number could be found in the uploaded document")
		case errors.As(err, &mismatch):
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("the EPIC number in the document (%s) does not match the one entered", mismatch.Extracted))
		case errors.Is(err, common.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.serverError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// submitDetails consumes the verification token and creates the member
// pending payment. The optional photo travels in the same form.
func (h *handler) submitDetails(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	token := r.FormValue("verification_token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "verification_token is required")
		return
	}
	details := registration.MemberDetails{
		Name:        r.FormValue("name"),
		ActiveNo:    r.FormValue("active_no"),
		Profession:  r.FormValue("profession"),
		Designation: r.FormValue("designation"),
		Mandal:      r.FormValue("mandal"),
		DOB:         r.FormValue("dob"),
		BloodGroup:  r.FormValue("blood_group"),
		ContactNo:   r.FormValue("contact_no"),
		Address:     r.FormValue("address"),
	}

	var member interface{}
	photo, photoHeader, err := r.FormFile("photo_file")
	if err == nil {
		defer photo.Close()
		member, err = h.deps.Registration.SubmitDetails(r.Context(), token, details, photo, photoHeader.Filename)
	} else {
		member, err = h.deps.Registration.SubmitDetails(r.Context(), token, details, nil, "")
	}
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusUnauthorized, "verification session is invalid or has expired")
		case errors.Is(err, common.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
		default:
			h.serverError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

type paymentUpdate struct {
	MemberID int64  `json:"member_id"`
	Status   string `json:"status"`
}

// updatePayment resolves a pending member. The body is validated against a
// JSON schema before decoding so malformed callbacks fail with a clear 400.
func (h *handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	body := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	var raw interface{}
	if err := body.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := compiledPaymentSchema.Validate(raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment update: "+err.Error())
		return
	}
	b, _ := json.Marshal(raw)
	var upd paymentUpdate
	if err := json.Unmarshal(b, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment update")
		return
	}

	if err := h.deps.Registration.UpdatePayment(r.Context(), upd.MemberID, upd.Status); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			writeError(w, http.StatusNotFound, "member not found")
		case errors.Is(err, registration.ErrInvalidPaymentStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.serverError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": upd.Status})
}

// verifyMembership backs the QR code on the card: given an id and membership
// number it confirms the pair belongs to an active member.
func (h *handler) verifyMembership(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	membershipNo := strings.TrimSpace(r.URL.Query().Get("membership_no"))
	if membershipNo == "" {
		writeError(w, http.StatusBadRequest, "membership_no is required")
		return
	}

	m, err := h.deps.Registration.VerifyMembership(r.Context(), id, membershipNo)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"valid": false,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":         true,
		"name":          m.Name,
		"membership_no": m.MembershipNo,
		"mandal":        m.Mandal,
		"status":        m.Status,
	})
}

type generateCardRequest struct {
	MemberID int64 `json:"member_id"`
}

// generateCard renders the card for an active member and streams the PDF.
func (h *handler) generateCard(w http.ResponseWriter, r *http.Request) {
	var req generateCardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil || req.MemberID <= 0 {
		writeError(w, http.StatusBadRequest, "member_id must be a positive integer")
		return
	}

	m, err := h.deps.Registration.GetMember(r.Context(), req.MemberID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	if m.Status != string(constants.StatusActive) {
		writeError(w, http.StatusConflict, "card can only be generated for active members")
		return
	}

	path, err := h.deps.Cards.Generate(m)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.MembershipNo+".pdf"))
	http.ServeFile(w, r, path)
}

func (h *handler) exportMembers(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Export.Members(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="members.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health(r.Context()); err != nil {
			h.deps.Logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.deps.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
