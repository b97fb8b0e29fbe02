package filterchain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
)

// decodeOptions decodes an options bag into a typed options struct.
// Weak typing is enabled so YAML-sourced scalars (e.g. numbers for strings)
// decode the way viper-style configuration does.
func decodeOptions(options map[string]any, target any) error {
	if len(options) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building options decoder: %w", err)
	}

	if err := dec.Decode(options); err != nil {
		return fmt.Errorf("decoding options: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// LowerCase
// ---------------------------------------------------------------------------

// LowerCase converts string input to lower case. Non-string input passes
// through unchanged.
type LowerCase struct{}

// NewLowerCaseFromOptions constructs a LowerCase filter. It takes no options.
func NewLowerCaseFromOptions(_ map[string]any) (Filter, error) {
	return &LowerCase{}, nil
}

func (f *LowerCase) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	return strings.ToLower(s), nil
}

// ---------------------------------------------------------------------------
// UpperCase
// ---------------------------------------------------------------------------

// UpperCase converts string input to upper case. Non-string input passes
// through unchanged.
type UpperCase struct{}

// NewUpperCaseFromOptions constructs an UpperCase filter. It takes no options.
func NewUpperCaseFromOptions(_ map[string]any) (Filter, error) {
	return &UpperCase{}, nil
}

func (f *UpperCase) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	return strings.ToUpper(s), nil
}

// ---------------------------------------------------------------------------
// StripUpperCase
// ---------------------------------------------------------------------------

// StripUpperCase removes all upper-case characters from string input.
// Non-string input passes through unchanged.
type StripUpperCase struct{}

// NewStripUpperCaseFromOptions constructs a StripUpperCase filter.
func NewStripUpperCaseFromOptions(_ map[string]any) (Filter, error) {
	return &StripUpperCase{}, nil
}

func (f *StripUpperCase) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	stripped := strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return -1
		}

		return r
	}, s)

	return stripped, nil
}

// ---------------------------------------------------------------------------
// StringTrim
// ---------------------------------------------------------------------------

// StringTrimOptions configures a StringTrim filter.
type StringTrimOptions struct {
	// CharList is the set of characters to trim from both ends.
	// When empty, whitespace is trimmed.
	CharList string `mapstructure:"charlist"`
}

// StringTrim trims characters from both ends of string input.
type StringTrim struct {
	opts StringTrimOptions
}

// NewStringTrim creates a StringTrim filter with the given options.
func NewStringTrim(opts StringTrimOptions) *StringTrim {
	return &StringTrim{opts: opts}
}

// NewStringTrimFromOptions constructs a StringTrim filter from an options bag.
func NewStringTrimFromOptions(options map[string]any) (Filter, error) {
	var opts StringTrimOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}

	return NewStringTrim(opts), nil
}

func (f *StringTrim) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	if f.opts.CharList == "" {
		return strings.TrimSpace(s), nil
	}

	return strings.Trim(s, f.opts.CharList), nil
}

// ---------------------------------------------------------------------------
// StripTags
// ---------------------------------------------------------------------------

// StripTagsOptions configures a StripTags filter.
type StripTagsOptions struct {
	// AllowedTags lists tag names (without angle brackets) that are kept.
	AllowedTags []string `mapstructure:"allowedTags"`
}

// StripTags removes markup tags from string input, keeping any tags listed
// in AllowedTags. Non-string input passes through unchanged.
type StripTags struct {
	allowed map[string]struct{}
}

// NewStripTags creates a StripTags filter with the given options.
func NewStripTags(opts StripTagsOptions) *StripTags {
	allowed := make(map[string]struct{}, len(opts.AllowedTags))
	for _, tag := range opts.AllowedTags {
		allowed[strings.ToLower(tag)] = struct{}{}
	}

	return &StripTags{allowed: allowed}
}

// NewStripTagsFromOptions constructs a StripTags filter from an options bag.
func NewStripTagsFromOptions(options map[string]any) (Filter, error) {
	var opts StripTagsOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}

	return NewStripTags(opts), nil
}

func (f *StripTags) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '<' {
			b.WriteByte(s[i])
			i++

			continue
		}

		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			// Unterminated tag: keep the remainder verbatim.
			b.WriteString(s[i:])
			break
		}

		tag := s[i : i+end+1]
		if _, ok := f.allowed[tagName(tag)]; ok {
			b.WriteString(tag)
		}

		i += end + 1
	}

	return b.String(), nil
}

// tagName extracts the lower-cased tag name from a raw "<...>" token.
func tagName(tag string) string {
	inner := strings.Trim(tag, "<>/ ")
	if idx := strings.IndexAny(inner, " \t\n"); idx >= 0 {
		inner = inner[:idx]
	}

	return strings.ToLower(inner)
}

// ---------------------------------------------------------------------------
// StripNewlines
// ---------------------------------------------------------------------------

// StripNewlines removes newline and carriage-return characters from string
// input. Non-string input passes through unchanged.
type StripNewlines struct{}

// NewStripNewlinesFromOptions constructs a StripNewlines filter.
func NewStripNewlinesFromOptions(_ map[string]any) (Filter, error) {
	return &StripNewlines{}, nil
}

func (f *StripNewlines) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	return strings.NewReplacer("\r", "", "\n", "").Replace(s), nil
}

// ---------------------------------------------------------------------------
// StringPrefix
// ---------------------------------------------------------------------------

// StringPrefixOptions configures a StringPrefix filter.
type StringPrefixOptions struct {
	// Prefix is prepended to string input.
	Prefix string `mapstructure:"prefix"`
}

// StringPrefix prepends a configured prefix to string input.
type StringPrefix struct {
	opts StringPrefixOptions
}

// NewStringPrefix creates a StringPrefix filter with the given options.
func NewStringPrefix(opts StringPrefixOptions) *StringPrefix {
	return &StringPrefix{opts: opts}
}

// NewStringPrefixFromOptions constructs a StringPrefix filter from an
// options bag.
func NewStringPrefixFromOptions(options map[string]any) (Filter, error) {
	var opts StringPrefixOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}

	return NewStringPrefix(opts), nil
}

func (f *StringPrefix) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	return f.opts.Prefix + s, nil
}

// ---------------------------------------------------------------------------
// URLNormalize
// ---------------------------------------------------------------------------

// URLNormalizeOptions configures a URLNormalize filter.
type URLNormalizeOptions struct {
	// DefaultScheme is applied to URLs that carry no scheme.
	DefaultScheme string `mapstructure:"defaultScheme"`
}

// URLNormalize canonicalizes URL string input: the scheme and host are
// lower-cased and a default scheme is applied when missing. Non-string input
// passes through unchanged; a string that does not parse as a URL is an
// error since malformed URLs are within this filter's domain.
type URLNormalize struct {
	opts URLNormalizeOptions
}

// NewURLNormalize creates a URLNormalize filter with the given options.
func NewURLNormalize(opts URLNormalizeOptions) *URLNormalize {
	return &URLNormalize{opts: opts}
}

// NewURLNormalizeFromOptions constructs a URLNormalize filter from an
// options bag.
func NewURLNormalizeFromOptions(options map[string]any) (Filter, error) {
	var opts URLNormalizeOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}

	return NewURLNormalize(opts), nil
}

func (f *URLNormalize) Filter(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	raw := s
	if f.opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = f.opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing URL %q: %w", s, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	return u.String(), nil
}
