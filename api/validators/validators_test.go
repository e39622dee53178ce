package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"short"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details := typed.Details().(map[string]string)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 8", details["password"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"12345678","role":"admin"}`))
	var body loginBody
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsTrailingContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"12345678"} {}`))
	var body loginBody
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "request body is required", typed.Message())
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Civic EXL", CleanText("  Civic\x00 EXL\n", 0))
	assert.Equal(t, "Ônibu", CleanText("Ônibus", 5))
	assert.Equal(t, "", CleanText("\t\r", 10))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err := ParseQueryInt(req, "limit", 20, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	v, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func multipartRequest(t *testing.T, field, name string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("other", "x"))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadFormFile(t *testing.T) {
	req := multipartRequest(t, "file", "../campanhas.csv", []byte("a,b\n1,2\n"))
	f, err := ReadFormFile(httptest.NewRecorder(), req, "file", 1<<20, 0)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "campanhas.csv", f.Name)
	assert.EqualValues(t, 8, f.Size)
}

func TestReadFormFileTooLarge(t *testing.T) {
	req := multipartRequest(t, "file", "big.csv", bytes.Repeat([]byte("x"), 4096))
	_, err := ReadFormFile(httptest.NewRecorder(), req, "file", 512, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTooLarge))
}

func TestReadFormFileMissingField(t *testing.T) {
	req := multipartRequest(t, "", "", nil)
	_, err := ReadFormFile(httptest.NewRecorder(), req, "file", 1<<20, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("Export.CSV", ".csv"))
	assert.False(t, HasExtension("export.xlsx", ".csv"))
}
