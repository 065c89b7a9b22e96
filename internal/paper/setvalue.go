package paper

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// UndefinedMarker is the literal some sources emit for a missing value.
// It is never written to a draft.
const UndefinedMarker = "undefined"

var (
	// ErrUnknownField is returned when SetValue is called with a key that is not in the schema.
	ErrUnknownField = errors.New("unknown entity field")

	// ErrFieldType is returned when a value cannot be assigned to the field's type.
	ErrFieldType = errors.New("invalid value type for entity field")
)

// SetValue is the controlled setter for draft fields, keyed by wire name.
//
// The value is written only when it is non-empty, unless allowEmpty is set.
// The undefined marker is never written. With format set, MathML embedded in
// string values is rewritten to inline LaTeX before assignment.
func (e *Entity) SetValue(key string, value any, allowEmpty, format bool) error {
	if !isSchemaField(key) {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	if format {
		if s, ok := value.(string); ok && s != "" {
			value = FormatMath(s)
		}
	}

	if s, ok := value.(string); ok && s == UndefinedMarker {
		return nil
	}
	if isEmptyValue(value) && !allowEmpty {
		return nil
	}

	return e.assign(key, value)
}

func (e *Entity) assign(key string, value any) error {
	switch key {
	case "_id":
		return setString(&e.ObjectID, key, value)
	case "id":
		return setString(&e.ID, key, value)
	case "_partition":
		return setString(&e.Partition, key, value)
	case "addTime":
		return setTime(&e.AddTime, key, value)
	case "title":
		return setString(&e.Title, key, value)
	case "authors":
		return setString(&e.Authors, key, value)
	case "publication":
		return setString(&e.Publication, key, value)
	case "pubTime":
		return setString(&e.PubTime, key, value)
	case "pubType":
		return setInt(&e.PubType, key, value)
	case "doi":
		return setString(&e.DOI, key, value)
	case "arxiv":
		return setString(&e.Arxiv, key, value)
	case "mainURL":
		return setString(&e.MainURL, key, value)
	case "supURLs":
		return setStrings(&e.SupURLs, key, value)
	case "rating":
		return setInt(&e.Rating, key, value)
	case "tags":
		return setTags(&e.Tags, key, value)
	case "folders":
		return setFolders(&e.Folders, key, value)
	case "flag":
		return setBool(&e.Flag, key, value)
	case "note":
		return setString(&e.Note, key, value)
	case "codes":
		return setStrings(&e.Codes, key, value)
	case "pages":
		return setString(&e.Pages, key, value)
	case "volume":
		return setString(&e.Volume, key, value)
	case "number":
		return setString(&e.Number, key, value)
	case "publisher":
		return setString(&e.Publisher, key, value)
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, key)
}

func isSchemaField(key string) bool {
	for _, f := range schemaFields {
		if f == key {
			return true
		}
	}
	return false
}

// isEmptyValue mirrors the falsy values of the host: nil, "", zero numbers,
// false, zero times and empty lists.
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case bool:
		return !x
	case time.Time:
		return x.IsZero()
	case []string:
		return len(x) == 0
	case []Tag:
		return len(x) == 0
	case []Folder:
		return len(x) == 0
	}
	return false
}

func typeError(key string, value any) error {
	return fmt.Errorf("%w: %s cannot hold %T", ErrFieldType, key, value)
}

func setString(dst *string, key string, value any) error {
	switch x := value.(type) {
	case nil:
		*dst = ""
	case string:
		*dst = x
	default:
		return typeError(key, value)
	}
	return nil
}

func setInt(dst *int, key string, value any) error {
	switch x := value.(type) {
	case nil:
		*dst = 0
	case int:
		*dst = x
	case int64:
		*dst = int(x)
	case float64:
		if x != math.Trunc(x) {
			return typeError(key, value)
		}
		*dst = int(x)
	default:
		return typeError(key, value)
	}
	return nil
}

func setBool(dst *bool, key string, value any) error {
	switch x := value.(type) {
	case nil:
		*dst = false
	case bool:
		*dst = x
	default:
		return typeError(key, value)
	}
	return nil
}

func setTime(dst *time.Time, key string, value any) error {
	switch x := value.(type) {
	case nil:
		*dst = time.Time{}
	case time.Time:
		*dst = x
	case string:
		t, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return typeError(key, value)
		}
		*dst = t
	default:
		return typeError(key, value)
	}
	return nil
}

func setStrings(dst *[]string, key string, value any) error {
	switch x := value.(type) {
	case nil:
		*dst = []string{}
	case []string:
		*dst = copyStrings(x)
	default:
		return typeError(key, value)
	}
	return nil
}

func setTags(dst *[]Tag, key string, value any) error {
	switch x := value.(type) {
	case nil:
		*dst = []Tag{}
	case []Tag:
		*dst = copyTags(x)
	default:
		return typeError(key, value)
	}
	return nil
}

func setFolders(dst *[]Folder, key string, value any) error {
	switch x := value.(type) {
	case nil:
		*dst = []Folder{}
	case []Folder:
		*dst = copyFolders(x)
	default:
		return typeError(key, value)
	}
	return nil
}
