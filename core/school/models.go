package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bukhari/academy/core"
)

// Attendance statuses
const (
	AttendancePresent = "keldi"
	AttendanceAbsent  = "kelmadi"
)

// Payment statuses, derived from the paid amount; never set by clients.
const (
	PaymentPaid    = "to'landi"
	PaymentPartial = "qisman"
	PaymentUnpaid  = "to'lanmadi"
)

// DefaultPaymentAmount is the monthly tuition in so'm used when no
// explicit amount has been recorded for a student.
const DefaultPaymentAmount = 500000

// Comment types
const (
	CommentPositive = "positive"
	CommentNegative = "negative"
	CommentNeutral  = "neutral"
)

var (
	AllAttendanceStatuses = []string{AttendancePresent, AttendanceAbsent}
	AllCommentTypes       = []string{CommentPositive, CommentNegative, CommentNeutral}

	// CommentSuggestions are canned remarks teachers can pick from.
	CommentSuggestions = map[string][]string{
		CommentPositive: {
			"Yaxshi o'qidi",
			"Faol qatnashdi",
			"Uyga vazifani to'liq bajargan",
			"Darsda diqqatli edi",
			"Savollarni yaxshi javob berdi",
			"Mashqlarni to'g'ri bajargan",
			"Yaxshi tayyorgarlik ko'rgan",
			"Darsda ijodkor edi",
		},
		CommentNegative: {
			"Uyga vazifani bajarmagan",
			"Darsda chalg'igan",
			"Kech kelgan",
			"Savollarni javob bermagan",
			"Mashqlarni noto'g'ri bajargan",
			"Tayyorgarlik ko'rmagan",
			"Darsda passiv edi",
		},
		CommentNeutral: {
			"Darsda qatnashdi",
			"Vazifani qisman bajargan",
			"O'rtacha natija ko'rsatdi",
			"Qo'shimcha mashq kerak",
			"Takrorlash talab etiladi",
		},
	}
)

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Grade struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	TeacherID string    `json:"teacher_id"`
	Value     int       `json:"grade_value"`
	Bonus     int       `json:"bonus"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Total is the effective grade including bonus points.
func (g Grade) Total() int { return g.Value + g.Bonus }

type Homework struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	TeacherID   string    `json:"teacher_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	DueDate     string    `json:"due_date"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Attendance struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	TeacherID string    `json:"teacher_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	Month      string    `json:"month"` // YYYY-MM
	Amount     int       `json:"amount"`
	PaidAmount int       `json:"paid_amount"`
	Status     string    `json:"status"`
	Note       *string   `json:"note"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Remaining is the outstanding balance, never negative.
func (p Payment) Remaining() int {
	if p.PaidAmount >= p.Amount {
		return 0
	}
	return p.Amount - p.PaidAmount
}

// PaymentStatusFor derives the payment status from amounts.
func PaymentStatusFor(amount, paid int) string {
	switch {
	case paid >= amount:
		return PaymentPaid
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

type News struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	TeacherID string    `json:"teacher_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name      string `json:"name" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

type NewGrade struct {
	StudentID string  `json:"student_id" validate:"required"`
	TeacherID string  `json:"teacher_id" validate:"required"`
	Value     int     `json:"grade_value" validate:"required,min=1,max=100"`
	Bonus     int     `json:"bonus" validate:"min=0,max=100"`
	Note      *string `json:"note"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	return validate.Struct(ng)
}

type NewHomework struct {
	StudentID   string `json:"student_id" validate:"required"`
	TeacherID   string `json:"teacher_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

func (nh *NewHomework) Validate(validate *validator.Validate) error {
	nh.Title = core.CleanString(nh.Title)
	nh.Description = core.CleanString(nh.Description)
	return validate.Struct(nh)
}

// UpdateHomework toggles the completion flag; students mark their own
// homework done, teachers may flip it back.
type UpdateHomework struct {
	IsCompleted bool `json:"is_completed"`
}

type NewAttendance struct {
	StudentID string `json:"student_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,attendancestatus"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

// NewPayment records or updates a tuition payment for a (student, month)
// pair. Status is derived server-side.
type NewPayment struct {
	StudentID  string  `json:"student_id" validate:"required"`
	Month      string  `json:"month" validate:"required,month"`
	Amount     int     `json:"amount" validate:"required,min=1"`
	PaidAmount int     `json:"paid_amount" validate:"min=0"`
	Note       *string `json:"note"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}

type NewNews struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	AuthorID string `json:"author_id" validate:"required"`
}

func (nn *NewNews) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	return validate.Struct(nn)
}

type NewComment struct {
	StudentID string `json:"student_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Type      string `json:"type" validate:"required,commenttype"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}
