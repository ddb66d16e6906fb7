// Package export produces spreadsheet exports of the member roll.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tnbsp/membership-workflow/internal/repository"
)

const sheetName = "Members"

var headers = []string{
	"ID", "Membership No", "Active No", "Name", "Profession", "Designation",
	"Mandal", "Date of Birth", "Blood Group", "Contact No", "Address",
	"Status", "Created At",
}

// Service renders the member roll as an XLSX workbook.
type Service struct {
	members repository.MemberRepository
	logger  *slog.Logger
}

func NewService(members repository.MemberRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{members: members, logger: logger}
}

// Members writes every member row into a single-sheet workbook and returns
// the serialized bytes.
func (s *Service) Members(ctx context.Context) ([]byte, error) {
	start := time.Now()
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for i, m := range members {
		row := i + 2
		values := []interface{}{
			m.ID, m.MembershipNo, m.ActiveNo, m.Name, m.Profession,
			m.Designation, m.Mandal, m.DOB, m.BloodGroup, m.ContactNo,
			m.Address, m.Status, m.CreatedAt.Format(time.RFC3339),
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 8); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "B", "M", 18); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	s.logger.Info("member export built",
		"rows", len(members),
		"duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
