package core

import "fmt"

// SearchScope restricts which record kinds the query is matched against.
type SearchScope int

const (
	// ScopeAll matches identity fields, project content and IP content.
	ScopeAll SearchScope = iota
	// ScopeOrganizations matches organization identity fields only.
	ScopeOrganizations
	// ScopeProjects matches project content only.
	ScopeProjects
	// ScopeIP matches IP asset content only.
	ScopeIP
)

// Toggle applies a scope selection to the current scope. Selecting the scope
// that is already active returns to ScopeAll, so repeated selection acts as
// an on/off switch; selecting a different scope replaces the current one.
func (s SearchScope) Toggle(target SearchScope) SearchScope {
	if target == s {
		return ScopeAll
	}
	return target
}

// AllowsIdentity reports whether identity fields participate in matching.
func (s SearchScope) AllowsIdentity() bool {
	return s == ScopeAll || s == ScopeOrganizations
}

// AllowsProjects reports whether project content participates in matching.
func (s SearchScope) AllowsProjects() bool {
	return s == ScopeAll || s == ScopeProjects
}

// AllowsIP reports whether IP asset content participates in matching.
func (s SearchScope) AllowsIP() bool {
	return s == ScopeAll || s == ScopeIP
}

func (s SearchScope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeOrganizations:
		return "organizations"
	case ScopeProjects:
		return "projects"
	case ScopeIP:
		return "ip"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope converts a scope name to a SearchScope.
func ParseScope(name string) (SearchScope, error) {
	switch name {
	case "all", "":
		return ScopeAll, nil
	case "organizations", "orgs":
		return ScopeOrganizations, nil
	case "projects":
		return ScopeProjects, nil
	case "ip", "rids":
		return ScopeIP, nil
	default:
		return ScopeAll, fmt.Errorf("%w: %q", ErrUnknownScope, name)
	}
}

// FundingTier buckets organizations by total reported funding. Funding
// figures in the dataset are in thousands of rubles.
type FundingTier int

const (
	// TierAll places no funding restriction.
	TierAll FundingTier = iota
	// TierSmall matches funding up to 100 million rubles.
	TierSmall
	// TierMedium matches funding above 100 million and up to 1 billion rubles.
	TierMedium
	// TierLarge matches funding above 1 billion rubles.
	TierLarge
)

const (
	smallFundingMax  = 100_000   // thousands of rubles
	mediumFundingMax = 1_000_000 // thousands of rubles
)

// Matches reports whether an organization with the given total funding falls
// into the tier. Boundary values belong to the lower tier.
func (t FundingTier) Matches(totalFunding float64) bool {
	switch t {
	case TierSmall:
		return totalFunding <= smallFundingMax
	case TierMedium:
		return totalFunding > smallFundingMax && totalFunding <= mediumFundingMax
	case TierLarge:
		return totalFunding > mediumFundingMax
	default:
		return true
	}
}

func (t FundingTier) String() string {
	switch t {
	case TierAll:
		return "all"
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseFundingTier converts a tier name to a FundingTier.
func ParseFundingTier(name string) (FundingTier, error) {
	switch name {
	case "all", "":
		return TierAll, nil
	case "small":
		return TierSmall, nil
	case "medium":
		return TierMedium, nil
	case "large":
		return TierLarge, nil
	default:
		return TierAll, fmt.Errorf("%w: %q", ErrUnknownFundingTier, name)
	}
}
