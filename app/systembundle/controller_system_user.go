package systembundle

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/google/uuid"
)

var (
	errLoginFailed   = errors.New("email or password wrong")
	errAccountLocked = errors.New("account locked")
)

// register swagger:route POST /system/register system register
//
// creates a coach account and logs it in
//
// Responses:
//        201:
//	       data: Coach
//        400: HandleErrorData "validation failed"
func (c *SystemController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	coach := core.Coach{}
	if err := c.GetContent(&coach, r); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}
	coach.ID = 0
	coach.Password = ""

	if !coach.Validate(c.ormDB) {
		c.SendErrors(w, coach.Errors, http.StatusBadRequest)
		return
	}
	if c.HandleError(coach.Save(c.ormDB), w) {
		return
	}
	c.Log().Info("coach registered", "coach", coach.ID)

	if c.HandleError(c.startSession(w, &coach), w) {
		return
	}
	c.SendJSON(w, &coach, http.StatusCreated)
}

// login swagger:route POST /system/login system login
//
// logs a coach in; the token comes back in the body and as cookie
//
// Responses:
//        200:
//	       data: Coach
//        401: HandleErrorData "unauthorized"
//        403: HandleErrorData "account locked"
func (c *SystemController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	input := LoginRequest{}
	if err := c.GetContent(&input, r); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}

	coach := core.Coach{}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	err := c.ormDB.Where("email = ?", email).First(&coach).Error
	if err != nil || !coach.CheckPassword(input.Password) {
		c.HandleUnauthorizedError(errLoginFailed, w)
		return
	}
	if !coach.IsActive {
		c.HandlePermissionError(errAccountLocked, w)
		return
	}

	if c.HandleError(c.startSession(w, &coach), w) {
		return
	}
	c.SendJSON(w, &coach, http.StatusOK)
}

func (c *SystemController) startSession(w http.ResponseWriter, coach *core.Coach) error {
	now := c.now().UTC()
	session := CoachSession{
		CoachId:      coach.ID,
		SessionToken: uuid.NewString(),
		LoginTime:    core.NewNullTime(now),
		ExpiresAt:    core.NewNullTime(now.AddDate(0, 0, c.sessionDays)),
	}
	if err := c.ormDB.Set("gorm:save_associations", false).Create(&session).Error; err != nil {
		return err
	}
	c.Sessions.Put(session.SessionToken, *coach, session.ExpiresAt.Time)

	coach.Token = session.SessionToken
	coach.PasswordX = ""
	http.SetCookie(w, &http.Cookie{
		Name:     core.SessionCookieName,
		Value:    session.SessionToken,
		Path:     "/",
		Expires:  session.ExpiresAt.Time,
		HttpOnly: true,
		Secure:   c.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *SystemController) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	err := c.ormDB.Unscoped().Where("session_token = ? AND coach_id = ?", coach.Token, coach.ID).Delete(&CoachSession{}).Error
	if c.HandleError(err, w) {
		return
	}
	c.Sessions.Delete(coach.Token)

	http.SetCookie(w, &http.Cookie{
		Name:     core.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	c.SendJSON(w, map[string]bool{"logged_out": true}, http.StatusOK)
}

func (c *SystemController) MeHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	coach.Token = ""
	c.SendJSON(w, coach, http.StatusOK)
}
