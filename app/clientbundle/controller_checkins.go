package clientbundle

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var photoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

var ErrUnsupportedPhoto = errors.New("photo must be a jpg, png, gif, webp or heic image")

func (c *ClientController) GetCheckInsHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}
	for i := range client.CheckIns {
		client.CheckIns[i].HasPhoto = client.CheckIns[i].PhotoPath != ""
	}
	c.SendJSON(w, client.CheckIns, http.StatusOK)
}

// addCheckIn swagger:route POST /clients/{clientId}/checkins checkins addCheckIn
//
// adds a check-in with an optional weight and photo
//
// consumes:
// - multipart/form-data
// - application/json
// Responses:
//        201:
//	       data: CheckIn
//        400: HandleErrorData "invalid weight or photo"
func (c *ClientController) AddCheckInHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}

	checkIn := &CheckIn{}
	var photo multipart.File
	var photoName string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes)
		if err := r.ParseMultipartForm(c.maxUploadBytes); err != nil {
			c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
			return
		}
		checkIn.Note = strings.TrimSpace(r.FormValue("note"))
		weight, err := parseWeight(r.FormValue("weight"))
		if c.HandleErrorWithStatus(err, w, http.StatusBadRequest) {
			return
		}
		checkIn.Weight = weight

		file, header, err := r.FormFile("photo")
		if err == nil {
			defer file.Close()
			photo, photoName = file, header.Filename
		} else if !errors.Is(err, http.ErrMissingFile) {
			c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
			return
		}
	} else {
		input := struct {
			Note   string   `json:"note"`
			Weight *float64 `json:"weight"`
		}{}
		if err := c.GetContent(&input, r); err != nil {
			c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
			return
		}
		if input.Weight != nil && !validWeight(*input.Weight) {
			c.HandleErrorWithStatus(errors.New("weight must be a positive number"), w, http.StatusBadRequest)
			return
		}
		checkIn.Note = strings.TrimSpace(input.Note)
		checkIn.Weight = input.Weight
	}

	if photo != nil {
		path, err := c.storePhoto(coach.ID, photoName, photo)
		if errors.Is(err, ErrUnsupportedPhoto) {
			c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
			return
		}
		if c.HandleError(err, w) {
			return
		}
		checkIn.PhotoPath = path
	}

	if err := AddCheckIn(c.ormDB, client, checkIn, c.thresholdDays); err != nil {
		if checkIn.PhotoPath != "" {
			os.Remove(checkIn.PhotoPath)
		}
		c.HandleError(err, w)
		return
	}
	checkIn.HasPhoto = checkIn.PhotoPath != ""
	client.CheckIns = append(CheckIns{*checkIn}, client.CheckIns...)

	c.publish(coach.ID, EventCheckIn, ActionAdd, client.View(c.now(), c.thresholdDays))
	c.SendJSON(w, checkIn, http.StatusCreated)
}

func parseWeight(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !validWeight(v) {
		return nil, fmt.Errorf("invalid weight %q", raw)
	}
	return &v, nil
}

func validWeight(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// storePhoto writes the photo below the coach's upload directory under a
// random name and returns its path.
func (c *ClientController) storePhoto(coachId uint, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !photoExtensions[ext] {
		return "", ErrUnsupportedPhoto
	}
	dir := filepath.Join(c.uploadPath, strconv.FormatUint(uint64(coachId), 10))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create photo directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("store photo: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("store photo: %w", err)
	}
	return path, nil
}

func (c *ClientController) GetCheckInPhotoHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}
	checkInId, err := c.GetUintVar(r, "checkInId")
	if c.HandleErrorWithStatus(err, w, http.StatusBadRequest) {
		return
	}

	for _, checkIn := range client.CheckIns {
		if checkIn.ID == checkInId && checkIn.PhotoPath != "" {
			c.SendFileWithName(w, r, checkIn.PhotoPath, fmt.Sprintf("checkin-%d%s", checkIn.ID, filepath.Ext(checkIn.PhotoPath)))
			return
		}
	}
	c.HandleErrorWithStatus(errors.New("photo not found"), w, http.StatusNotFound)
}
