package core

import (
	"errors"
	"testing"
)

func TestValidateOrganization(t *testing.T) {
	tests := []struct {
		name    string
		org     *Organization
		wantErr error
	}{
		{
			name: "valid organization",
			org: &Organization{
				OGRN: "1027700123456",
				Name: "НИИ Точных Измерений",
			},
			wantErr: nil,
		},
		{
			name: "valid with counts and funding",
			org: &Organization{
				OGRN:         "1027700123456",
				Name:         "НИИ",
				RIDCount:     12,
				ProjectCount: 4,
				TotalFunding: 350_000,
			},
			wantErr: nil,
		},
		{
			name:    "nil organization",
			org:     nil,
			wantErr: ErrInvalidOrganization,
		},
		{
			name: "empty ogrn",
			org: &Organization{
				Name: "НИИ",
			},
			wantErr: ErrEmptyOGRN,
		},
		{
			name: "empty name",
			org: &Organization{
				OGRN: "1027700123456",
			},
			wantErr: ErrEmptyName,
		},
		{
			name: "negative rid count",
			org: &Organization{
				OGRN:     "1027700123456",
				Name:     "НИИ",
				RIDCount: -1,
			},
			wantErr: ErrNegativeCount,
		},
		{
			name: "negative funding",
			org: &Organization{
				OGRN:         "1027700123456",
				Name:         "НИИ",
				TotalFunding: -10,
			},
			wantErr: ErrNegativeFunding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrganization(tt.org)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateOrganization() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateOrganization() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDetail(t *testing.T) {
	tests := []struct {
		name    string
		detail  *OrganizationDetail
		wantErr error
	}{
		{
			name: "valid detail",
			detail: &OrganizationDetail{
				Organization: Organization{
					OGRN: "1027700123456",
					Name: "НИИ",
				},
				Projects: []Project{{Name: "Проект"}},
			},
			wantErr: nil,
		},
		{
			name: "valid detail with empty lists",
			detail: &OrganizationDetail{
				Organization: Organization{
					OGRN: "1027700123456",
					Name: "НИИ",
				},
			},
			wantErr: nil,
		},
		{
			name:    "nil detail",
			detail:  nil,
			wantErr: ErrInvalidDetail,
		},
		{
			name: "invalid embedded organization",
			detail: &OrganizationDetail{
				Organization: Organization{Name: "НИИ"},
			},
			wantErr: ErrEmptyOGRN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDetail(tt.detail)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDetail() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDetail() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
