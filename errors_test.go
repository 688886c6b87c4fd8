package oaisim

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	var tests = []struct {
		s    string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"oai:example.org:1", "oai%3Aexample.org%3A1"},
		{"a/b-c_d.e~f", "a/b-c_d.e~f"},
		{"a b", "a%20b"},
		{"<x>&", "%3Cx%3E%26"},
		{"é", "%C3%A9"},
		{strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{strings.Repeat("a", 41), strings.Repeat("a", 40) + "..."},
		{strings.Repeat("<", 20), strings.Repeat("%3C", 13) + "%..."},
	}
	for _, tt := range tests {
		if got := sanitize(tt.s); got != tt.want {
			t.Errorf("sanitize(%q) got %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestErrorCodes(t *testing.T) {
	var tests = []struct {
		err  *OAIError
		code string
	}{
		{BadArgument(""), "badArgument"},
		{BadVerb(""), "badVerb"},
		{RepeatedVerb(), "badVerb"},
		{BadResumptionToken("x"), "badResumptionToken"},
		{CannotDisseminateFormat("x"), "cannotDisseminateFormat"},
		{IdDoesNotExist("x"), "idDoesNotExist"},
		{NoRecordsMatch(), "noRecordsMatch"},
		{NoMetadataFormats(), "noMetadataFormats"},
		{NoSetHierarchy(), "noSetHierarchy"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.NotEmpty(t, tt.err.Message)
		assert.True(t, IsCode(tt.err, tt.code))
		assert.True(t, IsCode(errors.Wrap(tt.err, "context"), tt.code))
	}
	assert.False(t, IsCode(errors.New("plain"), CodeBadArgument))
	assert.False(t, IsCode(nil, CodeBadArgument))
}

func TestErrorMessages(t *testing.T) {
	assert.True(t, strings.HasSuffix(BadVerb("").Message, "Missing verb."))
	assert.True(t, strings.HasSuffix(BadVerb("Foo Bar").Message, "Bad verb (Foo%20Bar)."))
	assert.Contains(t, IdDoesNotExist("<id>").Message, "(%3Cid%3E)")
	assert.Contains(t, BadResumptionToken("tok en").Message, "(tok%20en)")
	assert.Equal(t, "badArgument: "+BadArgument("").Message, BadArgument("").Error())
}
