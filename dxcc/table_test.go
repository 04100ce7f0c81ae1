// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dxcc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoad(t *testing.T) {
	tcs := []struct {
		Description string
		Input       string
		Expected    map[string]string
	}{
		{
			Description: "Trailing commas",
			Input:       "\"291\": \"United States of America\",\n\"339\": \"Japan\",\n",
			Expected: map[string]string{
				"291": "United States of America",
				"339": "Japan",
			},
		},
		{
			Description: "No trailing comma",
			Input:       `"1": "Canada"`,
			Expected:    map[string]string{"1": "Canada"},
		},
		{
			Description: "Comments and blank lines",
			Input:       "# entities\n\n   \n\"230\": \"Federal Republic of Germany\",\n# \"999\": \"Nowhere\",\n",
			Expected:    map[string]string{"230": "Federal Republic of Germany"},
		},
		{
			Description: "Embedded quotes",
			Input:       `"428": "Cote d'Ivoire",` + "\n" + `"999": "The \"Island\"",`,
			Expected: map[string]string{
				"428": "Cote d'Ivoire",
				"999": `The "Island"`,
			},
		},
		{
			Description: "Name containing a colon",
			Input:       `"5": "Aland Is.: Finland",`,
			Expected:    map[string]string{"5": "Aland Is.: Finland"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			table, err := Load(strings.NewReader(tc.Input), zap.NewNop())
			assert.NoError(err)
			assert.Equal(len(tc.Expected), table.Len())
			for code, name := range tc.Expected {
				assert.Equal(name, table.Resolve(code))
			}
		})
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	assert := assert.New(t)
	core, logs := observer.New(zap.WarnLevel)

	input := "\"291\": \"United States of America\",\nnot a valid line\n\"\": \"Empty code\",\n\"7\":\n\"339\": \"Japan\",\n"
	table, err := Load(strings.NewReader(input), zap.New(core))

	assert.NoError(err)
	assert.Equal(2, table.Len())
	assert.Equal("Japan", table.Resolve("339"))
	assert.Equal(3, logs.FilterMessage("skipping malformed dxcc line").Len())
}

func TestLoadFile(t *testing.T) {
	t.Run("Readable", func(t *testing.T) {
		require := require.New(t)
		path := filepath.Join(t.TempDir(), "dxcc.txt")
		require.NoError(os.WriteFile(path, []byte("\"339\": \"Japan\",\n"), 0o600))

		table, err := LoadFile(path, nil)
		require.NoError(err)
		require.Equal("Japan", table.Resolve("339"))
	})

	t.Run("Missing", func(t *testing.T) {
		assert := assert.New(t)
		table, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"), nil)
		assert.Nil(table)

		var loadErr LoadError
		assert.True(errors.As(err, &loadErr))
		assert.True(errors.Is(err, os.ErrNotExist))
	})
}

func TestResolve(t *testing.T) {
	table := NewTable(map[string]string{"339": "Japan"})
	tcs := []struct {
		Description string
		Code        string
		Expected    string
	}{
		{Description: "Known", Code: "339", Expected: "Japan"},
		{Description: "Unknown code", Code: "unknown-code", Expected: Unknown},
		{Description: "Empty code", Code: "", Expected: Unknown},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert.Equal(t, tc.Expected, table.Resolve(tc.Code))
		})
	}

	var nilTable *Table
	assert.Equal(t, Unknown, nilTable.Resolve("339"))
}
