package models

import (
	"errors"
	"testing"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
)

func TestValidateStruct(t *testing.T) {
	full := CreateComplaintRequest{
		Title:           "Noise",
		Category:        "noise",
		Source:          "hotline",
		Area:            AreaA,
		ComplainantName: "Li",
		Level:           "high",
		Content:         "loud music",
	}

	tests := []struct {
		name  string
		v     interface{}
		field string
	}{
		{"complete create", full, ""},
		{"blank title", func() CreateComplaintRequest { r := full; r.Title = "  "; return r }(), "title"},
		{"missing area", func() CreateComplaintRequest { r := full; r.Area = ""; return r }(), "area"},
		{"optional contact", func() CreateComplaintRequest { r := full; r.Contact = ""; return r }(), ""},
		{"resolve without status", ResolveRequest{TicketNo: "t1"}, "status"},
		{"resolve without ticket", ResolveRequest{Status: StatusCompleted}, "ticketNo"},
		{"feedback without rating", FeedbackSubmission{TicketNo: "t1", InvestigatorName: "Chen", ProcessingSpeed: "ok", StaffAttitude: "ok"}, "resolutionEffect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.v)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field || ve.Message != "is required" {
				t.Fatalf("expected required error on %s, got %v", tt.field, err)
			}
		})
	}
}
