// internal/app/store/queries/usersearch/usersearch.go
//
// Package usersearch composes the user-directory search predicate. It is
// pure: criteria go in, a Mongo filter document comes out, and the store
// executes it. Every criterion is optional; an absent criterion
// contributes no clause, so omission never excludes records. Only the
// verified-users base clause is unconditional.
package usersearch

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidExperienceRange is returned by ParseExperienceRange for
// non-empty input that matches neither "N+" nor "N-M".
var ErrInvalidExperienceRange = errors.New("invalid experience range format")

// Criteria holds the raw, independently-optional search inputs.
type Criteria struct {
	SearchText string
	Role       string
	MinYears   *int
	MaxYears   *int
	Industries []string
}

// Clause is one optional search criterion, already validated as present,
// that knows how to express itself as a Mongo filter.
type Clause interface {
	filter() bson.M
}

// NameMatch searches first/last name. A single token matches either
// field; two tokens (split on the first whitespace run) must match
// first name AND last name respectively, so a full-name search narrows.
type NameMatch struct {
	Text string
}

// RoleMatch is a case-insensitive equality test on the mentorship role.
type RoleMatch struct {
	Role string
}

// ExperienceRange bounds years of experience inclusively. Either bound
// may be nil for a half-open range.
type ExperienceRange struct {
	Min *int
	Max *int
}

// IndustrySet is a case-insensitive membership test against the user's
// industry.
type IndustrySet struct {
	Industries []string
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ciContains builds a case-insensitive substring match on one field.
func ciContains(field, term string) bson.M {
	return bson.M{field: primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}
}

func (n NameMatch) filter() bson.M {
	text := strings.ToLower(strings.TrimSpace(n.Text))

	parts := whitespaceRun.Split(text, 2)
	if len(parts) == 2 {
		// "first last": both fields must match their token.
		return bson.M{"$and": []bson.M{
			ciContains("first_name", parts[0]),
			ciContains("last_name", parts[1]),
		}}
	}

	// Single token: either field may match.
	return bson.M{"$or": []bson.M{
		ciContains("first_name", text),
		ciContains("last_name", text),
	}}
}

func (r RoleMatch) filter() bson.M {
	// Roles are persisted lowercase, so folding the input suffices for
	// case-insensitive equality.
	return bson.M{"role": strings.ToLower(strings.TrimSpace(r.Role))}
}

func (e ExperienceRange) filter() bson.M {
	rng := bson.M{}
	if e.Min != nil {
		rng["$gte"] = *e.Min
	}
	if e.Max != nil {
		rng["$lte"] = *e.Max
	}
	return bson.M{"years_of_experience": rng}
}

func (i IndustrySet) filter() bson.M {
	lowered := make([]string, 0, len(i.Industries))
	for _, ind := range i.Industries {
		if s := strings.ToLower(strings.TrimSpace(ind)); s != "" {
			lowered = append(lowered, s)
		}
	}
	return bson.M{"industry_ci": bson.M{"$in": lowered}}
}

// Clauses reduces criteria to the list of present clauses, in fixed
// order: name, role, experience, industries.
func Clauses(c Criteria) []Clause {
	var out []Clause
	if strings.TrimSpace(c.SearchText) != "" {
		out = append(out, NameMatch{Text: c.SearchText})
	}
	if strings.TrimSpace(c.Role) != "" {
		out = append(out, RoleMatch{Role: c.Role})
	}
	if c.MinYears != nil || c.MaxYears != nil {
		out = append(out, ExperienceRange{Min: c.MinYears, Max: c.MaxYears})
	}
	if hasNonBlank(c.Industries) {
		out = append(out, IndustrySet{Industries: c.Industries})
	}
	return out
}

func hasNonBlank(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Compose folds the present clauses onto the unconditional base clause
// (verified users only) with a logical AND. With no criteria the result
// is equivalent to the base clause alone.
func Compose(c Criteria) bson.M {
	conditions := []bson.M{{"is_verified": true}}
	for _, cl := range Clauses(c) {
		conditions = append(conditions, cl.filter())
	}
	return bson.M{"$and": conditions}
}

// ParseExperienceRange parses a textual experience-range token into
// optional bounds. Blank input yields (nil, nil). "N+" yields (N, nil);
// "N-M" yields (N, M). Anything else is a malformed-input error naming
// the offending string, never a silent no-op.
func ParseExperienceRange(s string) (min, max *int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}

	if rest, ok := strings.CutSuffix(s, "+"); ok {
		n, convErr := strconv.Atoi(strings.TrimSpace(rest))
		if convErr != nil || n < 0 {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidExperienceRange, s)
		}
		return &n, nil, nil
	}

	if lo, hi, ok := strings.Cut(s, "-"); ok {
		n, loErr := strconv.Atoi(strings.TrimSpace(lo))
		m, hiErr := strconv.Atoi(strings.TrimSpace(hi))
		if loErr != nil || hiErr != nil || n < 0 || m < 0 {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidExperienceRange, s)
		}
		return &n, &m, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrInvalidExperienceRange, s)
}
