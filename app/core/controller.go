package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// SessionCookieName is the cookie carrying the coach session token.
const SessionCookieName = "session_token"

const (
	StatusOK           = 1
	StatusUnauthorized = 997
	StatusForbidden    = 998
	StatusError        = 999
)

// Config is the loaded runtime configuration.
var Config Configuration

// Controller handle all base methods
type Controller struct {
	Sessions *SessionCache
	Logger   *log.Logger
}

// Log returns the controller logger or the default one.
func (c *Controller) Log() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

func (c *Controller) SendJSON(w http.ResponseWriter, v interface{}, code int) {
	c.SendJSONPaging(w, nil, v, code)
}

// SendJSONPaging wraps v into a ResponseData envelope unless it already is one.
func (c *Controller) SendJSONPaging(w http.ResponseWriter, paging *Paging, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var payload interface{}
	switch data := v.(type) {
	case ResponseData, *ResponseData:
		payload = data
	default:
		payload = ResponseData{
			Status: StatusOK,
			Data:   v,
			Paging: paging,
		}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		c.Log().Error("encoding JSON response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"status":999,"message":"Internal server error"}`)
		return
	}
	w.WriteHeader(code)
	w.Write(b)
}

// GetContent decodes the JSON request body into v.
func (c *Controller) GetContent(v interface{}, r *http.Request) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// HandleError write error on response and return false if there is no error
func (c *Controller) HandleError(err error, w http.ResponseWriter) bool {
	return c.HandleErrorWithStatus(err, w, http.StatusInternalServerError)
}

func (c *Controller) HandleErrorWithStatus(err error, w http.ResponseWriter, statusCode int) bool {
	if err == nil {
		return false
	}
	if statusCode >= http.StatusInternalServerError {
		c.Log().Error("request failed", "err", err)
	}

	msg := ResponseData{
		Status:  StatusError,
		Message: "An error occured",
		Detail:  err.Error(),
	}
	c.SendJSON(w, &msg, statusCode)
	return true
}

// SendErrors sends validation errors keyed by field.
func (c *Controller) SendErrors(w http.ResponseWriter, v map[string]string, statusCode int) {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errorText := ""
	for _, k := range keys {
		errorText += k + ": " + v[k] + "\n"
	}

	msg := ResponseData{
		Status:  StatusError,
		Message: "Validation failed",
		Detail:  strings.TrimSpace(errorText),
		Data:    v,
	}
	c.SendJSON(w, &msg, statusCode)
}

func (c *Controller) HandlePermissionError(err error, w http.ResponseWriter) bool {
	if err == nil {
		return false
	}
	msg := ResponseData{
		Status:  StatusForbidden,
		Message: "You are not allowed to access these data",
		Detail:  err.Error(),
	}
	c.SendJSON(w, &msg, http.StatusForbidden)
	return true
}

func (c *Controller) HandleUnauthorizedError(err error, w http.ResponseWriter) bool {
	if err == nil {
		return false
	}
	msg := ResponseData{
		Status:  StatusUnauthorized,
		Message: "You are not authorized, please login",
		Detail:  err.Error(),
	}
	c.SendJSON(w, &msg, http.StatusUnauthorized)
	return true
}

func (c *Controller) OptionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Add("Access-Control-Allow-Headers", "Authorization")
	w.Header().Add("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Add("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.WriteHeader(http.StatusOK)
}

// SessionToken returns the token sent as bearer header or session cookie.
func SessionToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GetCoach resolves the logged in coach and writes a 401 if there is none.
func (c *Controller) GetCoach(w http.ResponseWriter, r *http.Request) (bool, *Coach) {
	ok, coach := c.TryGetCoach(r)
	if !ok {
		c.HandleUnauthorizedError(errors.New("Session invalid"), w)
		return false, nil
	}
	return true, coach
}

func (c *Controller) TryGetCoach(r *http.Request) (bool, *Coach) {
	if c.Sessions == nil {
		return false, nil
	}
	token := SessionToken(r)
	if token == "" {
		return false, nil
	}
	coach, ok := c.Sessions.Get(token)
	if !ok {
		return false, nil
	}
	coach.Token = token
	return true, &coach
}

// GetUintVar reads a numeric path variable.
func (c *Controller) GetUintVar(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func (c *Controller) GetPaging(values url.Values) *Paging {
	paging := Paging{
		Page:    0,
		PerPage: 200,
		Offset:  -1,
		Limit:   -1,
	}
	if val := values.Get("page"); val != "" {
		paging.Page, _ = strconv.Atoi(val)
	}
	if val := values.Get("per_page"); val != "" {
		paging.PerPage, _ = strconv.Atoi(val)
	}
	if val := values.Get("limit"); val != "" {
		paging.Limit, _ = strconv.Atoi(val)
	}
	if val := values.Get("offset"); val != "" {
		paging.Offset, _ = strconv.Atoi(val)
	}

	if paging.Limit > 0 || paging.Offset > 0 {
		return &paging
	}
	if paging.PerPage <= 0 {
		paging.PerPage = 200
	}
	paging.Limit = paging.PerPage
	paging.Offset = paging.Page * paging.PerPage
	return &paging
}

func (c *Controller) SendFileWithName(w http.ResponseWriter, r *http.Request, path, filename string) {
	if _, err := os.Stat(path); err != nil {
		c.HandleErrorWithStatus(errors.New("file not found"), w, http.StatusNotFound)
		return
	}
	w.Header().Add("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Add("Access-Control-Allow-Origin", "*")
	w.Header().Add("Access-Control-Expose-Headers", "Content-Disposition,Access-Control-Allow-Origin")
	http.ServeFile(w, r, path)
}
