package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/catalog/internal/entities"
)

// MinPublishedYear is the earliest accepted publication year.
const MinPublishedYear = 1800

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the offending fields and a message for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// now is swapped in tests that pin the current year.
var now = time.Now

// Field rules shared by the create and update paths.
const (
	titleRules   = "required"
	yearRules    = "gte=1800,notfutureyear"
	genresRules  = "required,min=1,dive,genre"
	authorsRules = "required,min=1,dive,notblank"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return entities.IsValidGenre(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("notfutureyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(now().Year())
	})

	return v
}

// ValidateInput checks every field of a create request.
func ValidateInput(in BookInput) error {
	if err := validate.Struct(in); err != nil {
		return toValidationError(err, "")
	}
	return nil
}

// ValidatePatch checks only the fields present in p.
func ValidatePatch(p BookPatch) error {
	fields := map[string]string{}

	check := func(name string, value any, rules string) {
		if err := validate.Var(value, rules); err != nil {
			if verr, ok := toValidationError(err, name).(*ValidationError); ok {
				for k, msg := range verr.Fields {
					fields[k] = msg
				}
				return
			}
			fields[name] = "is invalid"
		}
	}

	if p.Title != nil {
		check("title", *p.Title, titleRules)
	}
	if p.PublishedYear != nil {
		check("published_year", *p.PublishedYear, yearRules)
	}
	if p.Genres != nil {
		check("genres", *p.Genres, genresRules)
	}
	if p.AuthorNames != nil {
		check("author_names", *p.AuthorNames, authorsRules)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateListQuery rejects unknown sort keys and malformed paging or filters.
func ValidateListQuery(q ListQuery) error {
	fields := map[string]string{}

	if _, ok := q.SortBy.OrderClause(); !ok {
		keys := make([]string, 0, len(sortOrders))
		for _, k := range SortKeys() {
			keys = append(keys, string(k))
		}
		fields["sort_by"] = "must be one of: " + strings.Join(keys, ", ")
	}
	if q.Skip < 0 {
		fields["skip"] = "must be greater than or equal to 0"
	}
	if q.Limit < 1 || q.Limit > MaxListLimit {
		fields["limit"] = fmt.Sprintf("must be between 1 and %d", MaxListLimit)
	}
	for i, g := range q.Filters.Genres {
		if !entities.IsValidGenre(g) {
			fields[fmt.Sprintf("genre[%d]", i)] = "must be one of the known genres"
		}
	}
	if q.Filters.YearFrom != nil && q.Filters.YearTo != nil && *q.Filters.YearFrom > *q.Filters.YearTo {
		fields["year_from"] = "must be less than or equal to year_to"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// toValidationError converts validator output to a *ValidationError. For
// single-value checks the validator reports no field name, so prefix names it.
func toValidationError(err error, prefix string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		name := e.Field()
		if prefix != "" {
			if strings.HasPrefix(name, "[") {
				name = prefix + name
			} else {
				name = prefix
			}
		}
		fields[name] = friendlyMessage(e)
	}
	return &ValidationError{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must not be empty"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "notfutureyear":
		return fmt.Sprintf("must not be later than %d", now().Year())
	case "genre":
		return "must be one of the known genres"
	case "notblank":
		return "must not be blank"
	default:
		return "is invalid"
	}
}
