// Copyright 2025 RnD Map contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateOrganization validates an Organization according to domain rules.
//
// Validation rules:
//   - OGRN must not be empty
//   - Name must not be empty
//   - Record counts must not be negative
//   - TotalFunding must not be negative
//
// NOT validated (optional in the source data):
//   - ShortName, Supervisor, classifier codes (often absent upstream)
//   - Lat/Lon (nil for organizations without coordinates)
//   - Keywords, rubrics, domains (can be empty lists)
func ValidateOrganization(org *Organization) error {
	if org == nil {
		return fmt.Errorf("%w: organization is nil", ErrInvalidOrganization)
	}

	if org.OGRN == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOrganization, ErrEmptyOGRN)
	}

	if org.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOrganization, ErrEmptyName)
	}

	if org.RIDCount < 0 || org.ProjectCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOrganization, ErrNegativeCount)
	}

	if org.TotalFunding < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOrganization, ErrNegativeFunding)
	}

	return nil
}

// ValidateDetail validates an OrganizationDetail according to domain rules.
//
// Validation rules:
//   - The embedded Organization must be valid
//
// Project and IP asset lists are accepted as-is; individual records with
// missing optional fields are kept rather than rejected, since the upstream
// exports routinely omit them.
func ValidateDetail(detail *OrganizationDetail) error {
	if detail == nil {
		return fmt.Errorf("%w: detail is nil", ErrInvalidDetail)
	}

	if err := ValidateOrganization(&detail.Organization); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDetail, err)
	}

	return nil
}
