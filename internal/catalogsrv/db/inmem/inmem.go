// Package inmem implements db.CatalogStore on process memory. It mirrors
// the semantics of the PostgreSQL store, including the literal-then-typed
// identifier lookup and the idempotent upserts, and exists so manager and
// handler tests run without a database.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edushelf/edushelf/internal/catalogsrv/catcommon"
	"github.com/edushelf/edushelf/internal/catalogsrv/db"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/dberror"
	"github.com/edushelf/edushelf/internal/catalogsrv/db/models"
	"github.com/edushelf/edushelf/internal/common/apperrors"
)

type catalogStore struct {
	mu        sync.Mutex
	colleges  map[string]*models.College
	courses   map[string]*models.Course
	semesters map[string]*models.Semester
	subjects  map[string]*models.Subject
	units     map[string]*models.Unit
	users     map[string]*models.User
}

// New returns an empty in-memory store.
func New() db.CatalogStore {
	return &catalogStore{
		colleges:  map[string]*models.College{},
		courses:   map[string]*models.Course{},
		semesters: map[string]*models.Semester{},
		subjects:  map[string]*models.Subject{},
		units:     map[string]*models.Unit{},
		users:     map[string]*models.User{},
	}
}

func (cs *catalogStore) Close() {}

func refForms(ref catcommon.Ref) []string {
	forms := []string{ref.Raw()}
	if typed, ok := ref.Typed(); ok {
		forms = append(forms, typed)
	}
	return forms
}

func lookup[T any](m map[string]*T, ref catcommon.Ref) (*T, bool) {
	for _, form := range refForms(ref) {
		if v, ok := m[form]; ok {
			return v, true
		}
	}
	return nil, false
}

func stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = catcommon.NewID()
	}
	now := time.Now().UTC()
	*createdAt = now
	*updatedAt = now
}

// College

func (cs *catalogStore) CreateCollege(ctx context.Context, college *models.College) apperrors.Error {
	if college.Name == "" {
		return dberror.ErrInvalidInput.Msg("college name cannot be empty")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.createCollegeLocked(college)
}

func (cs *catalogStore) createCollegeLocked(college *models.College) apperrors.Error {
	if cs.collegeByNameLocked(college.Name) != nil {
		return dberror.ErrAlreadyExists.Msg("college already exists")
	}
	stamp(&college.ID, &college.CreatedAt, &college.UpdatedAt)
	stored := *college
	cs.colleges[college.ID] = &stored
	return nil
}

func (cs *catalogStore) collegeByNameLocked(name string) *models.College {
	for _, c := range cs.colleges {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (cs *catalogStore) GetCollege(ctx context.Context, ref catcommon.Ref) (*models.College, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("college id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := lookup(cs.colleges, ref); ok {
		out := *c
		return &out, nil
	}
	return nil, dberror.ErrNotFound.Msg("college not found")
}

func (cs *catalogStore) ListColleges(ctx context.Context) ([]*models.College, apperrors.Error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := []*models.College{}
	for _, c := range cs.colleges {
		cc := *c
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (cs *catalogStore) UpsertCollege(ctx context.Context, college *models.College) apperrors.Error {
	if college.Name == "" {
		return dberror.ErrInvalidInput.Msg("college name cannot be empty")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing := cs.collegeByNameLocked(college.Name); existing != nil {
		existing.Info = college.Info
		existing.UpdatedAt = time.Now().UTC()
		*college = *existing
		return nil
	}
	return cs.createCollegeLocked(college)
}

// Course

func (cs *catalogStore) CreateCourse(ctx context.Context, course *models.Course) apperrors.Error {
	if err := validateCourse(course); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.createCourseLocked(course)
}

func validateCourse(course *models.Course) apperrors.Error {
	if course.Name == "" {
		return dberror.ErrInvalidInput.Msg("course name cannot be empty")
	}
	if course.CollegeID == "" {
		return dberror.ErrInvalidInput.Msg("course college cannot be empty")
	}
	return nil
}

func (cs *catalogStore) createCourseLocked(course *models.Course) apperrors.Error {
	if _, ok := cs.colleges[course.CollegeID]; !ok {
		return dberror.ErrInvalidInput.Msg("course parent not found")
	}
	if cs.courseByParentAndNameLocked(course.CollegeID, course.Name) != nil {
		return dberror.ErrAlreadyExists.Msg("course already exists")
	}
	stamp(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	stored := *course
	cs.courses[course.ID] = &stored
	return nil
}

func (cs *catalogStore) courseByParentAndNameLocked(collegeID, name string) *models.Course {
	for _, c := range cs.courses {
		if c.CollegeID == collegeID && c.Name == name {
			return c
		}
	}
	return nil
}

func (cs *catalogStore) GetCourse(ctx context.Context, ref catcommon.Ref) (*models.Course, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("course id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := lookup(cs.courses, ref); ok {
		out := *c
		return &out, nil
	}
	return nil, dberror.ErrNotFound.Msg("course not found")
}

func (cs *catalogStore) ListCoursesByCollege(ctx context.Context, college catcommon.Ref) ([]*models.Course, apperrors.Error) {
	if college.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("college id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, form := range refForms(college) {
		out := []*models.Course{}
		for _, c := range cs.courses {
			if c.CollegeID == form {
				cc := *c
				out = append(out, &cc)
			}
		}
		if len(out) > 0 {
			sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
			return out, nil
		}
	}
	return []*models.Course{}, nil
}

func (cs *catalogStore) UpsertCourse(ctx context.Context, course *models.Course) apperrors.Error {
	if err := validateCourse(course); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing := cs.courseByParentAndNameLocked(course.CollegeID, course.Name); existing != nil {
		existing.Code = course.Code
		existing.Info = course.Info
		existing.UpdatedAt = time.Now().UTC()
		*course = *existing
		return nil
	}
	return cs.createCourseLocked(course)
}

// Semester

func (cs *catalogStore) CreateSemester(ctx context.Context, semester *models.Semester) apperrors.Error {
	if err := validateSemester(semester); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.createSemesterLocked(semester)
}

func validateSemester(semester *models.Semester) apperrors.Error {
	if semester.CourseID == "" {
		return dberror.ErrInvalidInput.Msg("semester course cannot be empty")
	}
	if semester.Number < 1 {
		return dberror.ErrInvalidInput.Msg("semester number must be positive")
	}
	return nil
}

func (cs *catalogStore) createSemesterLocked(semester *models.Semester) apperrors.Error {
	if _, ok := cs.courses[semester.CourseID]; !ok {
		return dberror.ErrInvalidInput.Msg("semester parent not found")
	}
	if cs.semesterByCourseAndNumberLocked(semester.CourseID, semester.Number) != nil {
		return dberror.ErrAlreadyExists.Msg("semester already exists")
	}
	stamp(&semester.ID, &semester.CreatedAt, &semester.UpdatedAt)
	stored := *semester
	cs.semesters[semester.ID] = &stored
	return nil
}

func (cs *catalogStore) semesterByCourseAndNumberLocked(courseID string, number int) *models.Semester {
	for _, s := range cs.semesters {
		if s.CourseID == courseID && s.Number == number {
			return s
		}
	}
	return nil
}

func (cs *catalogStore) GetSemester(ctx context.Context, ref catcommon.Ref) (*models.Semester, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("semester id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if s, ok := lookup(cs.semesters, ref); ok {
		out := *s
		return &out, nil
	}
	return nil, dberror.ErrNotFound.Msg("semester not found")
}

func sortSemesters(out []*models.Semester) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}

func (cs *catalogStore) ListSemestersByCourse(ctx context.Context, course catcommon.Ref) ([]*models.Semester, apperrors.Error) {
	if course.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("course id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, form := range refForms(course) {
		out := []*models.Semester{}
		for _, s := range cs.semesters {
			if s.CourseID == form {
				ss := *s
				out = append(out, &ss)
			}
		}
		if len(out) > 0 {
			sortSemesters(out)
			return out, nil
		}
	}
	return []*models.Semester{}, nil
}

func (cs *catalogStore) ListSemestersByCollege(ctx context.Context, college catcommon.Ref) ([]*models.Semester, apperrors.Error) {
	if college.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("college id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, form := range refForms(college) {
		out := []*models.Semester{}
		for _, s := range cs.semesters {
			inCollege := s.CollegeID == form
			if !inCollege && s.CourseID != "" {
				if c, ok := cs.courses[s.CourseID]; ok && c.CollegeID == form {
					inCollege = true
				}
			}
			if inCollege {
				ss := *s
				out = append(out, &ss)
			}
		}
		if len(out) > 0 {
			sortSemesters(out)
			return out, nil
		}
	}
	return []*models.Semester{}, nil
}

func (cs *catalogStore) UpsertSemester(ctx context.Context, semester *models.Semester) apperrors.Error {
	if err := validateSemester(semester); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing := cs.semesterByCourseAndNumberLocked(semester.CourseID, semester.Number); existing != nil {
		existing.Name = semester.Name
		existing.Info = semester.Info
		existing.UpdatedAt = time.Now().UTC()
		*semester = *existing
		return nil
	}
	return cs.createSemesterLocked(semester)
}

// Subject

func (cs *catalogStore) CreateSubject(ctx context.Context, subject *models.Subject) apperrors.Error {
	if err := validateSubject(subject); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.createSubjectLocked(subject)
}

func validateSubject(subject *models.Subject) apperrors.Error {
	if subject.Name == "" {
		return dberror.ErrInvalidInput.Msg("subject name cannot be empty")
	}
	if subject.SemesterID == "" {
		return dberror.ErrInvalidInput.Msg("subject semester cannot be empty")
	}
	return nil
}

func (cs *catalogStore) createSubjectLocked(subject *models.Subject) apperrors.Error {
	if _, ok := cs.semesters[subject.SemesterID]; !ok {
		return dberror.ErrInvalidInput.Msg("subject parent not found")
	}
	if cs.subjectBySemesterAndNameLocked(subject.SemesterID, subject.Name) != nil {
		return dberror.ErrAlreadyExists.Msg("subject already exists")
	}
	stamp(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
	stored := *subject
	cs.subjects[subject.ID] = &stored
	return nil
}

func (cs *catalogStore) subjectBySemesterAndNameLocked(semesterID, name string) *models.Subject {
	for _, s := range cs.subjects {
		if s.SemesterID == semesterID && s.Name == name {
			return s
		}
	}
	return nil
}

func (cs *catalogStore) GetSubject(ctx context.Context, ref catcommon.Ref) (*models.Subject, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("subject id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if s, ok := lookup(cs.subjects, ref); ok {
		out := *s
		return &out, nil
	}
	return nil, dberror.ErrNotFound.Msg("subject not found")
}

func (cs *catalogStore) ListSubjectsBySemester(ctx context.Context, semester catcommon.Ref) ([]*models.Subject, apperrors.Error) {
	if semester.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("semester id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, form := range refForms(semester) {
		out := []*models.Subject{}
		for _, s := range cs.subjects {
			if s.SemesterID == form {
				ss := *s
				out = append(out, &ss)
			}
		}
		if len(out) > 0 {
			sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
			return out, nil
		}
	}
	return []*models.Subject{}, nil
}

func (cs *catalogStore) UpsertSubject(ctx context.Context, subject *models.Subject) apperrors.Error {
	if err := validateSubject(subject); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing := cs.subjectBySemesterAndNameLocked(subject.SemesterID, subject.Name); existing != nil {
		existing.Code = subject.Code
		existing.Info = subject.Info
		existing.UpdatedAt = time.Now().UTC()
		*subject = *existing
		return nil
	}
	return cs.createSubjectLocked(subject)
}

// Unit

func (cs *catalogStore) CreateUnit(ctx context.Context, unit *models.Unit) apperrors.Error {
	if err := validateUnit(unit); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.createUnitLocked(unit)
}

func validateUnit(unit *models.Unit) apperrors.Error {
	if unit.Name == "" {
		return dberror.ErrInvalidInput.Msg("unit name cannot be empty")
	}
	if unit.SubjectID == "" {
		return dberror.ErrInvalidInput.Msg("unit subject cannot be empty")
	}
	if unit.Number < 1 {
		return dberror.ErrInvalidInput.Msg("unit number must be positive")
	}
	return nil
}

func (cs *catalogStore) createUnitLocked(unit *models.Unit) apperrors.Error {
	if _, ok := cs.subjects[unit.SubjectID]; !ok {
		return dberror.ErrInvalidInput.Msg("unit parent not found")
	}
	if cs.unitBySubjectAndNumberLocked(unit.SubjectID, unit.Number) != nil {
		return dberror.ErrAlreadyExists.Msg("unit already exists")
	}
	stamp(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
	stored := *unit
	cs.units[unit.ID] = &stored
	return nil
}

func (cs *catalogStore) unitBySubjectAndNumberLocked(subjectID string, number int) *models.Unit {
	for _, u := range cs.units {
		if u.SubjectID == subjectID && u.Number == number {
			return u
		}
	}
	return nil
}

func (cs *catalogStore) GetUnit(ctx context.Context, ref catcommon.Ref) (*models.Unit, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("unit id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if u, ok := lookup(cs.units, ref); ok {
		out := *u
		return &out, nil
	}
	return nil, dberror.ErrNotFound.Msg("unit not found")
}

func (cs *catalogStore) ListUnitsBySubject(ctx context.Context, subject catcommon.Ref) ([]*models.Unit, apperrors.Error) {
	if subject.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("subject id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, form := range refForms(subject) {
		out := []*models.Unit{}
		for _, u := range cs.units {
			if u.SubjectID == form {
				uu := *u
				out = append(out, &uu)
			}
		}
		if len(out) > 0 {
			sort.Slice(out, func(i, j int) bool {
				if out[i].Number != out[j].Number {
					return out[i].Number < out[j].Number
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
			return out, nil
		}
	}
	return []*models.Unit{}, nil
}

func (cs *catalogStore) UpsertUnit(ctx context.Context, unit *models.Unit) apperrors.Error {
	if err := validateUnit(unit); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing := cs.unitBySubjectAndNumberLocked(unit.SubjectID, unit.Number); existing != nil {
		existing.Name = unit.Name
		existing.SourceKind = unit.SourceKind
		existing.SourceRef = unit.SourceRef
		existing.Description = unit.Description
		existing.Info = unit.Info
		existing.UpdatedAt = time.Now().UTC()
		*unit = *existing
		return nil
	}
	return cs.createUnitLocked(unit)
}

// User

func (cs *catalogStore) CreateUser(ctx context.Context, user *models.User) apperrors.Error {
	if user.Email == "" {
		return dberror.ErrInvalidInput.Msg("user email cannot be empty")
	}
	if user.PasswordHash == "" {
		return dberror.ErrInvalidInput.Msg("user password hash cannot be empty")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, u := range cs.users {
		if strings.EqualFold(u.Email, user.Email) {
			return dberror.ErrAlreadyExists.Msg("user already exists")
		}
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	stored := *user
	cs.users[user.ID] = &stored
	return nil
}

func (cs *catalogStore) GetUser(ctx context.Context, ref catcommon.Ref) (*models.User, apperrors.Error) {
	if ref.IsZero() {
		return nil, dberror.ErrInvalidInput.Msg("user id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if u, ok := lookup(cs.users, ref); ok {
		out := *u
		return &out, nil
	}
	return nil, dberror.ErrNotFound.Msg("user not found")
}

func (cs *catalogStore) GetUserByEmail(ctx context.Context, email string) (*models.User, apperrors.Error) {
	if email == "" {
		return nil, dberror.ErrInvalidInput.Msg("email must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, u := range cs.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("user not found")
}

func (cs *catalogStore) SetUserCollege(ctx context.Context, userID, collegeID string) (*models.User, apperrors.Error) {
	if userID == "" {
		return nil, dberror.ErrInvalidInput.Msg("user id must be provided")
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	u, ok := cs.users[userID]
	if !ok {
		return nil, dberror.ErrNotFound.Msg("user not found")
	}
	if collegeID != "" {
		if _, ok := cs.colleges[collegeID]; !ok {
			return nil, dberror.ErrInvalidInput.Msg("user parent not found")
		}
	}
	u.CollegeID = collegeID
	u.UpdatedAt = time.Now().UTC()
	out := *u
	return &out, nil
}
