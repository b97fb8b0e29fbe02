package filterchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins_PassThroughNonString(t *testing.T) {
	filters := []Filter{
		&LowerCase{},
		&UpperCase{},
		&StripUpperCase{},
		NewStringTrim(StringTrimOptions{}),
		NewStripTags(StripTagsOptions{}),
		&StripNewlines{},
		NewStringPrefix(StringPrefixOptions{Prefix: "x-"}),
		NewURLNormalize(URLNormalizeOptions{}),
	}

	for _, f := range filters {
		for _, input := range []any{42, 3.14, true, nil, []int{1, 2}} {
			out, err := f.Filter(input)
			require.NoError(t, err, "%T on %v", f, input)
			assert.Equal(t, input, out, "%T must pass through %v", f, input)
		}
	}
}

func TestLowerCase(t *testing.T) {
	out, err := (&LowerCase{}).Filter("AbC")
	require.NoError(t, err)
	assert.Equal(t, "abc", out)
}

func TestUpperCase(t *testing.T) {
	out, err := (&UpperCase{}).Filter("AbC")
	require.NoError(t, err)
	assert.Equal(t, "ABC", out)
}

func TestStripUpperCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "AbC", want: "b"},
		{input: "lowercase", want: "lowercase"},
		{input: "ALLUPPER", want: ""},
		{input: "Mixed Case 123", want: "ixed ase 123"},
	}

	for _, tt := range tests {
		out, err := (&StripUpperCase{}).Filter(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out)
	}
}

func TestStringTrim(t *testing.T) {
	t.Run("whitespace by default", func(t *testing.T) {
		out, err := NewStringTrim(StringTrimOptions{}).Filter("  abc \n")
		require.NoError(t, err)
		assert.Equal(t, "abc", out)
	})

	t.Run("custom charlist", func(t *testing.T) {
		out, err := NewStringTrim(StringTrimOptions{CharList: "-*"}).Filter("**-abc-**")
		require.NoError(t, err)
		assert.Equal(t, "abc", out)
	})
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		opts  StripTagsOptions
		input string
		want  string
	}{
		{
			name:  "all tags removed",
			input: "<p>hello <b>world</b></p>",
			want:  "hello world",
		},
		{
			name:  "allowed tag kept",
			opts:  StripTagsOptions{AllowedTags: []string{"b"}},
			input: "<p>hello <b>world</b></p>",
			want:  "hello <b>world</b>",
		},
		{
			name:  "allowed tag with attributes",
			opts:  StripTagsOptions{AllowedTags: []string{"a"}},
			input: `<a href="x">link</a><img src="y">`,
			want:  `<a href="x">link</a>`,
		},
		{
			name:  "unterminated tag kept verbatim",
			input: "hello <broken",
			want:  "hello <broken",
		},
		{
			name:  "no tags",
			input: "plain text",
			want:  "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewStripTags(tt.opts).Filter(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestStripNewlines(t *testing.T) {
	out, err := (&StripNewlines{}).Filter("a\r\nb\nc")
	require.NoError(t, err)
	assert.Equal(t, "abc", out)
}

func TestStringPrefix(t *testing.T) {
	out, err := NewStringPrefix(StringPrefixOptions{Prefix: ">> "}).Filter("msg")
	require.NoError(t, err)
	assert.Equal(t, ">> msg", out)
}

func TestURLNormalize(t *testing.T) {
	tests := []struct {
		name  string
		opts  URLNormalizeOptions
		input string
		want  string
	}{
		{
			name:  "lowercases scheme and host",
			input: "HTTPS://Example.COM/Path",
			want:  "https://example.com/Path",
		},
		{
			name:  "default scheme applied",
			opts:  URLNormalizeOptions{DefaultScheme: "https"},
			input: "example.com/x",
			want:  "https://example.com/x",
		},
		{
			name:  "existing scheme wins over default",
			opts:  URLNormalizeOptions{DefaultScheme: "https"},
			input: "http://example.com",
			want:  "http://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewURLNormalize(tt.opts).Filter(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestURLNormalize_Malformed(t *testing.T) {
	_, err := NewURLNormalize(URLNormalizeOptions{}).Filter("http://exa mple.com/\x7f")

	// Malformed URLs are within this filter's domain, so it fails rather
	// than passing them through.
	require.Error(t, err)
}

func TestBuiltinFactories_OptionDecoding(t *testing.T) {
	t.Run("striptags allowedTags", func(t *testing.T) {
		f, err := NewStripTagsFromOptions(map[string]any{
			"allowedTags": []any{"b", "i"},
		})
		require.NoError(t, err)

		out, err := f.Filter("<b>x</b><p>y</p>")
		require.NoError(t, err)
		assert.Equal(t, "<b>x</b>y", out)
	})

	t.Run("stringtrim charlist", func(t *testing.T) {
		f, err := NewStringTrimFromOptions(map[string]any{"charlist": "."})
		require.NoError(t, err)

		out, err := f.Filter("..abc..")
		require.NoError(t, err)
		assert.Equal(t, "abc", out)
	})

	t.Run("bad option type", func(t *testing.T) {
		_, err := NewStripTagsFromOptions(map[string]any{
			"allowedTags": map[string]any{"not": "a list"},
		})
		require.Error(t, err)
	})
}
