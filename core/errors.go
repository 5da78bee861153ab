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

import "errors"

// Domain validation errors
var (
	// ErrInvalidOrganization indicates an Organization failed validation.
	ErrInvalidOrganization = errors.New("invalid organization")

	// ErrInvalidDetail indicates an OrganizationDetail failed validation.
	ErrInvalidDetail = errors.New("invalid organization detail")

	// ErrEmptyOGRN indicates the OGRN field is empty.
	ErrEmptyOGRN = errors.New("ogrn cannot be empty")

	// ErrEmptyName indicates the organization name is empty.
	ErrEmptyName = errors.New("organization name cannot be empty")

	// ErrNegativeCount indicates a record count is negative.
	ErrNegativeCount = errors.New("record count cannot be negative")

	// ErrNegativeFunding indicates a funding total is negative.
	ErrNegativeFunding = errors.New("funding total cannot be negative")

	// ErrUnknownScope indicates an unrecognized search scope name.
	ErrUnknownScope = errors.New("unknown search scope")

	// ErrUnknownFundingTier indicates an unrecognized funding tier name.
	ErrUnknownFundingTier = errors.New("unknown funding tier")
)
