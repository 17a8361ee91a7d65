package chat

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
)

type (
	// UserGetter looks a user up by id. Satisfied by user.Repository.
	UserGetter interface {
		GetUserByID(id int) (user.User, error)
	}

	// StudentLister lists a course's student participants. Satisfied by
	// course.Repository.
	StudentLister interface {
		QueryCourseStudents(courseID int) ([]user.User, error)
	}

	// Notifier pushes model-driven events onto course channels. It is
	// invoked by the course service strictly after the triggering write
	// has committed; notification events themselves are never persisted.
	Notifier struct {
		broker   *Broker
		users    UserGetter
		students StudentLister
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

var _ course.Observer = (*Notifier)(nil)

func NewNotifier(broker *Broker, users UserGetter, students StudentLister, mailSvc core.EmailService, logger core.Logger) *Notifier {
	return &Notifier{
		broker:   broker,
		users:    users,
		students: students,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// EnrollmentCreated fans an "enrolled" event out to the course channel and
// emails the course owner. Teacher self-enrollments do not notify. The email
// side channel is best-effort; its failures never reach the caller.
func (n *Notifier) EnrollmentCreated(crs course.Course, enr course.Enrollment) {
	if enr.Role != course.EnrollStudent {
		return
	}

	student, err := n.users.GetUserByID(enr.UserID)
	if err != nil {
		n.logger.Error(fmt.Sprintf("notifier: looking up enrolled user %d: %v", enr.UserID, err), err)
		return
	}

	event := EnrolledEvent{
		Event:     EventEnrolled,
		User:      student.Username,
		Course:    crs.Title,
		Text:      fmt.Sprintf("%s enrolled in %s", student.Username, crs.Title),
		CreatedAt: time.Now().UTC(),
	}
	if err = n.broker.Broadcast(GroupName(crs.ID), event); err != nil {
		n.logger.Error(fmt.Sprintf("notifier: broadcasting enrollment on course %d: %v", crs.ID, err), err)
	}

	owner, err := n.users.GetUserByID(crs.CreatedBy)
	if err != nil || owner.Email == "" {
		return
	}
	n.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: owner.Name, Address: owner.Email}},
		Subject: fmt.Sprintf("New enrollment: %s", crs.Title),
		BodyStr: fmt.Sprintf("%s has enrolled in %q", student.Username, crs.Title),
	})
}

// MaterialCreated fans a "material" event out to the course channel and
// emails every student participant with a known address. Individual delivery
// failures are swallowed by the email service.
func (n *Notifier) MaterialCreated(crs course.Course, mat course.Material) {
	event := MaterialEvent{
		Event:     EventMaterial,
		Title:     mat.Title,
		Course:    crs.Title,
		CreatedAt: time.Now().UTC(),
		URL:       mat.URL,
		HasFile:   mat.HasFile,
	}
	if err := n.broker.Broadcast(GroupName(crs.ID), event); err != nil {
		n.logger.Error(fmt.Sprintf("notifier: broadcasting material on course %d: %v", crs.ID, err), err)
	}

	students, err := n.students.QueryCourseStudents(crs.ID)
	if err != nil {
		n.logger.Error(fmt.Sprintf("notifier: listing students of course %d: %v", crs.ID, err), err)
		return
	}

	msgs := make([]*core.EmailMessage, 0, len(students))
	for _, st := range students {
		if st.Email == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Name: st.Name, Address: st.Email}},
			Subject: fmt.Sprintf("New material in %s", crs.Title),
			BodyStr: fmt.Sprintf("%q was added to %s", mat.Title, crs.Title),
		})
	}
	if len(msgs) > 0 {
		n.mailSvc.SendMessages(msgs...)
	}
}
