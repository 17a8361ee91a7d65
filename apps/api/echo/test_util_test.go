package echoapi

import (
	"bytes"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/chat"
	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
	dummymail "github.com/darasa-app/darasa/services/email/dummy"
	logsvc "github.com/darasa-app/darasa/services/logger"
	inmemdb "github.com/darasa-app/darasa/storage/database/inmem"
)

type apiEnv struct {
	app  Server
	auth auth
	conf *core.Config

	usrSvc  *user.Service
	crsSvc  *course.Service
	chatSvc *chat.Service
	broker  *chat.Broker
	mailSvc *dummymail.Service
}

func testConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Darasa",
		SecretKey: "test-secret-key",
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
		Chat: core.ChatConfig{
			HistoryLimit:   50,
			SendBuffer:     16,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   2 * time.Second,
			PingInterval:   5 * time.Second,
			MaxMessageSize: 4096,
		},
	}
}

func setup(t *testing.T) *apiEnv {
	db, err := inmemdb.Open()
	require.NoError(t, err)

	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	chatRepo := inmemdb.NewChatRepository(db)

	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	mailSvc := dummymail.NewService()
	broker := chat.NewBroker(logger)
	notifier := chat.NewNotifier(broker, usrRepo, crsRepo, mailSvc, logger)

	conf := testConfig()

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	env := &apiEnv{
		auth:    auth{conf: conf},
		conf:    conf,
		usrSvc:  user.NewService(usrRepo),
		crsSvc:  course.NewService(crsRepo, notifier),
		chatSvc: chat.NewService(chatRepo),
		broker:  broker,
		mailSvc: mailSvc,
	}
	env.app = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    env.usrSvc,
		CourseSvc:  env.crsSvc,
		ChatSvc:    env.chatSvc,
		Broker:     broker,
		Validate:   validate,
		Translator: translator,
	})
	return env
}

func (env *apiEnv) createUser(t *testing.T, uname, email string, roles ...string) user.User {
	usr, err := env.usrSvc.Create(user.NewUser{
		Name:     uname,
		Username: uname,
		Email:    email,
		Password: "s3cr3tPass",
		Roles:    roles,
	})
	require.NoError(t, err)
	return usr
}

func (env *apiEnv) createCourse(t *testing.T, title string, owner user.User) course.Course {
	crs, err := env.crsSvc.Create(course.NewCourse{Title: title}, owner.ID)
	require.NoError(t, err)
	return crs
}

func (env *apiEnv) enroll(t *testing.T, usr user.User, crs course.Course, role string) {
	_, err := env.crsSvc.Enroll(course.NewEnrollment{UserID: usr.ID, CourseID: crs.ID, Role: role})
	require.NoError(t, err)
}

func (env *apiEnv) token(t *testing.T, usr user.User) string {
	token, err := env.auth.generateToken(env.auth.getUserClaims(usr))
	require.NoError(t, err)
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}
