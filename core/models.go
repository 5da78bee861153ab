package core

import (
	"encoding/binary"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// DigestOf returns a deterministic 64-bit BLAKE2b digest of raw dataset bytes.
// Identical snapshot bytes produce identical digests, which is how cached
// details are tied to the dataset revision they were fetched under.
func DigestOf(data []byte) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// LooseString decodes a JSON string, number, or null into a plain string.
// The open-data exports are not consistent about scalar types; fields such as
// stage numbers and headcounts arrive as strings in some records and numbers
// in others.
type LooseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *LooseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
		return nil
	}
	*s = LooseString(data)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s LooseString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s LooseString) String() string { return string(s) }

// Keyword is an aggregated keyword with its occurrence count across an
// organization's projects and IP assets.
type Keyword struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Rubric is a classifier entry (GRNTI rubric or OECD field) as a code/name pair.
type Rubric struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Organization is the summary record for one R&D organization as it appears
// in the map index. OGRN is the registration number that identifies the
// organization everywhere in the dataset.
type Organization struct {
	OGRN              string         `json:"ogrn"`
	Name              string         `json:"name"`
	ShortName         string         `json:"short_name"`
	Supervisor        string         `json:"supervisor"`
	OrgType           string         `json:"org_type"`
	OKOGU             string         `json:"okogu"`
	OKOPF             string         `json:"okopf"`
	RIDCount          int            `json:"rid_count"`
	ProjectCount      int            `json:"project_count"`
	RIDTypes          map[string]int `json:"rid_types"`
	TopKeywords       []Keyword      `json:"top_keywords"`
	Rubrics           []Rubric       `json:"rubrics"`
	ScientificDomains []Rubric       `json:"scientific_domains"`
	Lat               *float64       `json:"lat"`
	Lon               *float64       `json:"lon"`
	TotalFunding      float64        `json:"total_funding"` // thousands of rubles
}

// Budget is a single funding line on a project.
type Budget struct {
	Funds      float64 `json:"funds"`
	BudgetType string  `json:"budget_type"`
}

// Project is one research project (NIOKTR record) of an organization.
type Project struct {
	RegistrationNumber string      `json:"registration_number"`
	NIOKTR             string      `json:"nioktr"`
	Name               string      `json:"name"`
	Abstract           string      `json:"abstract"`
	Keywords           []string    `json:"keywords"`
	ReportType         string      `json:"report_type"`
	Status             string      `json:"status"`
	StageStartDate     string      `json:"stage_start_date"`
	StageEndDate       string      `json:"stage_end_date"`
	StageNumber        LooseString `json:"stage_number"`
	WorkersTotal       LooseString `json:"workers_total"`
	FinanceTotal       float64     `json:"finance_total"`
	PublicationCount   int         `json:"publication_count"`
	Rubrics            []Rubric    `json:"rubrics"`
	OECDFields         []Rubric    `json:"oesrs"`
	Budgets            []Budget    `json:"budgets"`
	CreatedDate        string      `json:"created_date"`
}

// Author is a credited author on an IP asset.
type Author struct {
	Name     string `json:"name"`
	Degree   string `json:"degree"`
	Rank     string `json:"rank"`
	ORCID    string `json:"orcid"`
	ScopusID string `json:"scopus_id"`
}

// Protection is a legal protection event for an IP asset.
type Protection struct {
	Date                  string   `json:"date"`
	RIDType               string   `json:"rid_type"`
	ProtectionWay         string   `json:"protection_way"`
	RegistrationAuthority string   `json:"registration_authority"`
	Territory             []string `json:"territory"`
}

// UsageEvent records one use of an IP asset, either by the owning
// organization ("own") or under contract by an external one ("external").
type UsageEvent struct {
	Type          string      `json:"type"`
	Date          string      `json:"date"`
	Description   string      `json:"description"`
	Organization  string      `json:"organization"`
	ContractType  string      `json:"contract_type"`
	EstimatedTime LooseString `json:"estimated_time"`
}

// IPAsset is one registered result of intellectual activity (RID) of an
// organization: a patent, a database, a software registration and so on.
type IPAsset struct {
	RegistrationNumber string       `json:"registration_number"`
	Name               string       `json:"name"`
	Abstract           string       `json:"abstract"`
	Keywords           []string     `json:"keywords"`
	RIDType            string       `json:"rid_type"`
	UsingWays          string       `json:"using_ways"`
	Rubrics            []Rubric     `json:"rubrics"`
	OECDFields         []Rubric     `json:"oesrs"`
	Authors            []Author     `json:"authors"`
	CreatedDate        string       `json:"created_date"`
	NIOKTR             string       `json:"nioktr"`
	Protections        []Protection `json:"protections"`
	Usage              []UsageEvent `json:"usage"`
}

// OrganizationDetail is the full per-organization record: the summary fields
// plus the complete project and IP asset lists.
type OrganizationDetail struct {
	Organization
	Projects []Project `json:"projects"`
	RIDs     []IPAsset `json:"rids"`
}

// TextEntry holds the flattened searchable text for one organization: one
// lowercased "name abstract" string per project and per IP asset.
type TextEntry struct {
	Projects []string `json:"projects"`
	RIDs     []string `json:"rids"`
}

// MatchKind classifies why an organization matched a query. Kinds are
// ordered: a higher value is a more specific explanation and displaces a
// lower one when reasons are merged.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchDomain
	MatchKeyword
	MatchIP
	MatchProject
	MatchIdentity
)

// String returns the stable tag for the kind, suitable for display mapping.
func (k MatchKind) String() string {
	switch k {
	case MatchIdentity:
		return "identity-match"
	case MatchProject:
		return "project-match"
	case MatchIP:
		return "ip-match"
	case MatchKeyword:
		return "keyword-match"
	case MatchDomain:
		return "domain-match"
	default:
		return ""
	}
}

// MatchReason explains the strongest reason an organization matched a query.
type MatchReason struct {
	Kind   MatchKind
	Detail string // optional human-readable detail, e.g. the matched keyword
	Count  int    // optional match count, e.g. how many projects matched
}

// Merge keeps the higher-priority of the two reasons. Equal kinds keep the
// existing reason, so the first explanation of a given strength wins.
func (r MatchReason) Merge(other MatchReason) MatchReason {
	if other.Kind > r.Kind {
		return other
	}
	return r
}

// SemanticResult is one hit returned by the remote semantic search service.
// Year arrives as a string in current payloads but has been numeric before.
type SemanticResult struct {
	ProjectID        string      `json:"project_id"`
	CenterID         string      `json:"center_id"`
	CenterName       string      `json:"center_name"`
	Title            string      `json:"title"`
	Year             LooseString `json:"year"`
	Score            float64     `json:"score"`
	WhyMatched       string      `json:"why_matched"`
	EvidenceSnippets []string    `json:"evidence_snippets"`
}

// ActiveStatus is the canonical "in progress" project status string in the
// source data.
const ActiveStatus = "В работе"

// IsActiveStatus reports whether a project status marks the project as
// currently in progress.
func IsActiveStatus(status string) bool {
	return strings.TrimSpace(status) == ActiveStatus
}

// YearOf extracts the year from a date string by locating the first run of
// four consecutive digits. It returns 0 when the string has none, which sorts
// undated items last.
func YearOf(date string) int {
	run := 0
	for i := 0; i < len(date); i++ {
		if date[i] >= '0' && date[i] <= '9' {
			run++
			if run == 4 {
				year, _ := strconv.Atoi(date[i-3 : i+1])
				return year
			}
		} else {
			run = 0
		}
	}
	return 0
}
