// Package registration orchestrates the membership workflow: document
// verification, detail submission, and payment resolution.
package registration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/common"
	"github.com/tnbsp/membership-workflow/internal/entity"
	"github.com/tnbsp/membership-workflow/internal/epic"
	"github.com/tnbsp/membership-workflow/internal/filestore"
	"github.com/tnbsp/membership-workflow/internal/metrics"
	"github.com/tnbsp/membership-workflow/internal/repository"
	"github.com/tnbsp/membership-workflow/internal/session"
	"github.com/tnbsp/membership-workflow/internal/verify"
)

var reContact = regexp.MustCompile(`^\d{10}$`)

// DocumentVerifier abstracts the verify pipeline so tests can substitute a
// canned implementation.
type DocumentVerifier interface {
	Verify(ctx context.Context, path, expected string) verify.Result
}

// MemberDetails carries the applicant-supplied fields of a submission.
type MemberDetails struct {
	Name        string `json:"name"`
	ActiveNo    string `json:"active_no"`
	Profession  string `json:"profession"`
	Designation string `json:"designation"`
	Mandal      string `json:"mandal"`
	DOB         string `json:"dob"`
	BloodGroup  string `json:"blood_group"`
	ContactNo   string `json:"contact_no"`
	Address     string `json:"address"`
}

// Service ties the verifier, session store, file store, and repository into
// the registration workflow.
type Service struct {
	verifier   DocumentVerifier
	sessions   session.Store
	files      filestore.Store
	members    repository.MemberRepository
	sessionTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(
	verifier DocumentVerifier,
	sessions session.Store,
	files filestore.Store,
	members repository.MemberRepository,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		verifier:   verifier,
		sessions:   sessions,
		files:      files,
		members:    members,
		sessionTTL: sessionTTL,
		now:        time.Now,
		logger:     logger,
	}
}

// VerifyDocument stages the uploaded document, checks it for the entered EPIC
// number, and opens a verification session on success. On any failure the
// staged file is removed; it is only kept alive by an open session.
func (s *Service) VerifyDocument(ctx context.Context, epicNumber string, doc io.Reader, filename string) (string, error) {
	epicNumber = strings.ToUpper(strings.TrimSpace(epicNumber))
	if !epic.IsValid(epicNumber) {
		metrics.Verifications.WithLabelValues("error").Inc()
		return "", common.NewAppError("VALIDATION_ERROR", "epic_number must be 3 letters followed by 7 digits", common.ErrInvalidInput)
	}
	ext := constants.NormalizeExt(extOf(filename))
	if _, ok := constants.DocumentExtensions[ext]; !ok {
		metrics.Verifications.WithLabelValues("error").Inc()
		return "", common.NewAppError("VALIDATION_ERROR", "document must be a PDF", common.ErrInvalidInput)
	}

	tempPath, err := s.files.StageTemp(doc, filename)
	if err != nil {
		metrics.Verifications.WithLabelValues("error").Inc()
		return "", common.WrapError(err, "stage document")
	}

	res := s.verifier.Verify(ctx, tempPath, epicNumber)
	if res.UsedOCR {
		metrics.OCRFallbacks.Inc()
	}
	if !res.Matched {
		s.files.Remove(tempPath)
		if res.Extracted == "" {
			metrics.Verifications.WithLabelValues("not_found").Inc()
			s.logger.Info("verification failed, no identifier found", "entered", epicNumber)
			return "", ErrNoIdentifier
		}
		metrics.Verifications.WithLabelValues("mismatched").Inc()
		s.logger.Info("verification failed, identifier mismatch", "entered", epicNumber, "extracted", res.Extracted)
		return "", &MismatchError{Entered: epicNumber, Extracted: res.Extracted}
	}

	token, err := s.sessions.Create(ctx, tempPath, epicNumber, s.sessionTTL)
	if err != nil {
		s.files.Remove(tempPath)
		metrics.Verifications.WithLabelValues("error").Inc()
		return "", common.WrapError(err, "create verification session")
	}
	metrics.Verifications.WithLabelValues("matched").Inc()
	s.logger.Info("document verified", "epic", epicNumber, "used_ocr", res.UsedOCR)
	return token, nil
}

// SubmitDetails consumes a verification session, promotes the staged document
// and photo into permanent storage, and creates the member pending payment.
// The session is single-use: a second submission with the same token fails
// even if the first one errored, because the staged file is gone either way.
func (s *Service) SubmitDetails(ctx context.Context, token string, details MemberDetails, photo io.Reader, photoName string) (*entity.Member, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}
	if photo != nil {
		ext := constants.NormalizeExt(extOf(photoName))
		if _, ok := constants.PhotoExtensions[ext]; !ok {
			return nil, common.NewAppError("VALIDATION_ERROR", "photo must be a JPG or PNG", common.ErrInvalidInput)
		}
	}

	sess, err := s.sessions.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	uid := strings.Split(uuid.NewString(), "-")[0]
	docPath, err := s.files.PromoteDocument(sess.DocumentPath, sess.EPIC, uid)
	if err != nil {
		s.files.Remove(sess.DocumentPath)
		return nil, common.WrapError(err, "store document")
	}

	var photoPath string
	if photo != nil {
		photoPath, err = s.files.SavePhoto(photo, sess.EPIC, uid, photoName)
		if err != nil {
			s.files.Remove(docPath)
			return nil, common.WrapError(err, "store photo")
		}
	}

	m := &entity.Member{
		Name:         strings.TrimSpace(details.Name),
		ActiveNo:     strings.TrimSpace(details.ActiveNo),
		Profession:   strings.TrimSpace(details.Profession),
		Designation:  strings.TrimSpace(details.Designation),
		Mandal:       strings.TrimSpace(details.Mandal),
		DOB:          details.DOB,
		BloodGroup:   details.BloodGroup,
		ContactNo:    details.ContactNo,
		Address:      strings.TrimSpace(details.Address),
		DocumentPath: docPath,
		PhotoPath:    photoPath,
	}
	id, err := s.members.CreatePending(ctx, m)
	if err != nil {
		s.files.Remove(docPath)
		s.files.Remove(photoPath)
		return nil, common.WrapError(err, "create member")
	}

	number := s.membershipNumber(id)
	if err := s.members.AssignMembershipNumber(ctx, id, number); err != nil {
		return nil, common.WrapError(err, "assign membership number")
	}
	m.ID = id
	m.MembershipNo = number
	m.Status = string(constants.StatusPendingPayment)
	metrics.MembersCreated.Inc()
	s.logger.Info("member created pending payment", "member_id", id, "membership_no", number)
	return m, nil
}

// UpdatePayment resolves a pending member: a successful payment activates the
// row, a failed one deletes it along with the stored files.
func (s *Service) UpdatePayment(ctx context.Context, memberID int64, status string) error {
	switch status {
	case constants.PaymentSuccessful:
		if err := s.members.Activate(ctx, memberID); err != nil {
			return err
		}
		metrics.MembersActivated.Inc()
		s.logger.Info("member activated", "member_id", memberID)
		return nil
	case constants.PaymentFailed:
		docPath, photoPath, err := s.members.Delete(ctx, memberID)
		if err != nil {
			return err
		}
		s.files.Remove(docPath)
		s.files.Remove(photoPath)
		metrics.MembersDeleted.Inc()
		s.logger.Info("member removed after failed payment", "member_id", memberID)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, status)
	}
}

// VerifyMembership confirms that a member id and membership number belong
// together and the member is active. It backs the QR code on the card.
func (s *Service) VerifyMembership(ctx context.Context, memberID int64, membershipNo string) (*entity.Member, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.MembershipNo != membershipNo || m.Status != string(constants.StatusActive) {
		return nil, common.ErrNotFound
	}
	return m, nil
}

// GetMember fetches a member by id.
func (s *Service) GetMember(ctx context.Context, memberID int64) (*entity.Member, error) {
	return s.members.GetByID(ctx, memberID)
}

// ListMembers returns all members in insertion order.
func (s *Service) ListMembers(ctx context.Context) ([]*entity.Member, error) {
	return s.members.List(ctx)
}

// membershipNumber formats BSP-<year><month>-<id>, e.g. BSP-202609-000042.
func (s *Service) membershipNumber(id int64) string {
	now := s.now()
	return fmt.Sprintf("BSP-%d%02d-%06d", now.Year(), int(now.Month()), id)
}

func validateDetails(d MemberDetails) error {
	v := common.NewValidator()
	v.Field("name", d.Name, common.Required, common.MaxLength(200)).
		Field("contact_no", d.ContactNo, common.Required, common.Matches(reContact, "must be a 10-digit phone number")).
		Field("dob", d.DOB, common.DateYMD).
		Field("blood_group", d.BloodGroup, common.OneOf(constants.BloodGroups)).
		Field("profession", d.Profession, common.MaxLength(200)).
		Field("designation", d.Designation, common.MaxLength(200)).
		Field("mandal", d.Mandal, common.MaxLength(200)).
		Field("address", d.Address, common.MaxLength(1000))
	return v.Error()
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
