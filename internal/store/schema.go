package store

import (
	"github.com/pocketbase/pocketbase/core"
)

const (
	Movies             = "movies"
	Showtimes          = "showtimes"
	Bookings           = "bookings"
	Coupons            = "coupons"
	Employees          = "employees"
	SalaryHistory      = "salary_history"
	PerformanceReviews = "performance_reviews"
	SupportTickets     = "support_tickets"
	ReportedReviews    = "reported_reviews"
	Conversations      = "conversations"
	Messages           = "messages"
	NotificationPrefs  = "notification_preferences"
	Promotions         = "promotions"

	// UsersCollection is the auth collection holding customers and staff.
	UsersCollection = "users"
)

// Schema returns the collections in creation order. Relations point at collections earlier in the list.
// API rules are left nil so records are only reachable through the custom routes.
func Schema() []*core.Collection {
	movies := core.NewBaseCollection(Movies)
	movies.Fields.Add(
		&core.TextField{Name: "title", Required: true, Max: 200},
		&core.TextField{Name: "description"},
		&core.NumberField{Name: "duration_min", OnlyInt: true},
		&core.TextField{Name: "rating", Max: 10},
		&core.URLField{Name: "poster_url"},
		&core.SelectField{Name: "status", MaxSelect: 1, Values: []string{"now_showing", "coming_soon", "archived"}},
	)

	showtimes := core.NewBaseCollection(Showtimes)
	showtimes.Fields.Add(
		&core.RelationField{Name: "movie", CollectionId: movies.Id, MaxSelect: 1, Required: true, CascadeDelete: true},
		&core.TextField{Name: "screen", Required: true},
		&core.DateField{Name: "starts_at", Required: true},
		&core.NumberField{Name: "base_price"},
	)
	showtimes.AddIndex("idx_showtimes_movie_start", false, "movie, starts_at", "")

	bookings := core.NewBaseCollection(Bookings)
	bookings.Fields.Add(
		&core.TextField{Name: "reference", Required: true},
		&core.TextField{Name: "customer_id"},
		&core.TextField{Name: "salesman_id"},
		&core.TextField{Name: "holder_id"},
		&core.SelectField{Name: "channel", MaxSelect: 1, Values: []string{"online", "counter"}},
		&core.TextField{Name: "showtime_id", Required: true},
		&core.TextField{Name: "movie_id"},
		&core.TextField{Name: "movie_title"},
		&core.JSONField{Name: "seats"},
		&core.TextField{Name: "coupon_code"},
		&core.NumberField{Name: "subtotal"},
		&core.NumberField{Name: "discount"},
		&core.NumberField{Name: "total"},
		&core.SelectField{Name: "status", MaxSelect: 1, Values: []string{"pending", "confirmed", "cancelled"}},
		&core.TextField{Name: "payment_id"},
		&core.DateField{Name: "created_at"},
		&core.DateField{Name: "paid_at"},
	)
	bookings.AddIndex("idx_bookings_reference", true, "reference", "")
	bookings.AddIndex("idx_bookings_status_paid", false, "status, paid_at", "")

	coupons := core.NewBaseCollection(Coupons)
	coupons.Fields.Add(
		&core.TextField{Name: "code", Required: true, Max: 32},
		&core.TextField{Name: "description"},
		&core.SelectField{Name: "type", MaxSelect: 1, Required: true, Values: []string{"percentage", "fixed"}},
		&core.NumberField{Name: "value"},
		&core.NumberField{Name: "min_purchase"},
		&core.NumberField{Name: "max_discount"},
		&core.DateField{Name: "valid_from"},
		&core.DateField{Name: "valid_until"},
		&core.NumberField{Name: "usage_limit", OnlyInt: true},
		&core.NumberField{Name: "used_count", OnlyInt: true},
		&core.BoolField{Name: "active"},
		&core.AutodateField{Name: "created", OnCreate: true},
	)
	coupons.AddIndex("idx_coupons_code", true, "code", "")

	employees := core.NewBaseCollection(Employees)
	employees.Fields.Add(
		&core.TextField{Name: "user_id"},
		&core.TextField{Name: "name", Required: true},
		&core.EmailField{Name: "email", Required: true},
		&core.TextField{Name: "phone"},
		&core.SelectField{Name: "role", MaxSelect: 1, Values: []string{"admin", "moderator", "salesman"}},
		&core.TextField{Name: "department"},
		&core.NumberField{Name: "salary"},
		&core.DateField{Name: "hire_date"},
		&core.SelectField{Name: "status", MaxSelect: 1, Values: []string{"active", "on_leave", "terminated"}},
		&core.DateField{Name: "terminated_at"},
	)

	salaries := core.NewBaseCollection(SalaryHistory)
	salaries.Fields.Add(
		&core.RelationField{Name: "employee", CollectionId: employees.Id, MaxSelect: 1, Required: true, CascadeDelete: true},
		&core.NumberField{Name: "previous"},
		&core.NumberField{Name: "amount"},
		&core.DateField{Name: "effective_date"},
		&core.TextField{Name: "reason"},
		&core.TextField{Name: "changed_by"},
	)

	reviews := core.NewBaseCollection(PerformanceReviews)
	reviews.Fields.Add(
		&core.RelationField{Name: "employee", CollectionId: employees.Id, MaxSelect: 1, Required: true, CascadeDelete: true},
		&core.TextField{Name: "reviewer_id"},
		&core.TextField{Name: "period", Max: 20},
		&core.NumberField{Name: "rating", OnlyInt: true},
		&core.TextField{Name: "strengths"},
		&core.TextField{Name: "comments"},
		&core.DateField{Name: "reviewed_at"},
	)

	tickets := core.NewBaseCollection(SupportTickets)
	tickets.Fields.Add(
		&core.TextField{Name: "customer_id"},
		&core.TextField{Name: "subject", Required: true},
		&core.TextField{Name: "description"},
		&core.SelectField{Name: "priority", MaxSelect: 1, Values: []string{"low", "medium", "high"}},
		&core.SelectField{Name: "status", MaxSelect: 1, Values: []string{"open", "in_progress", "resolved", "closed"}},
		&core.TextField{Name: "assignee_id"},
		&core.TextField{Name: "resolution"},
		&core.DateField{Name: "created_at"},
		&core.DateField{Name: "updated_at"},
	)

	reported := core.NewBaseCollection(ReportedReviews)
	reported.Fields.Add(
		&core.TextField{Name: "review_id", Required: true},
		&core.TextField{Name: "movie_id"},
		&core.TextField{Name: "author_id"},
		&core.TextField{Name: "reporter_id"},
		&core.TextField{Name: "content"},
		&core.TextField{Name: "reason"},
		&core.SelectField{Name: "status", MaxSelect: 1, Values: []string{"pending", "approved", "removed"}},
		&core.TextField{Name: "moderator_id"},
		&core.TextField{Name: "note"},
		&core.DateField{Name: "reported_at"},
		&core.DateField{Name: "resolved_at"},
	)

	conversations := core.NewBaseCollection(Conversations)
	conversations.Fields.Add(
		&core.TextField{Name: "customer_id", Required: true},
		&core.TextField{Name: "staff_id", Required: true},
		&core.TextField{Name: "subject"},
		&core.TextField{Name: "last_message"},
		&core.DateField{Name: "last_message_at"},
		&core.NumberField{Name: "unread_customer", OnlyInt: true},
		&core.NumberField{Name: "unread_staff", OnlyInt: true},
	)

	messages := core.NewBaseCollection(Messages)
	messages.Fields.Add(
		&core.RelationField{Name: "conversation", CollectionId: conversations.Id, MaxSelect: 1, Required: true, CascadeDelete: true},
		&core.TextField{Name: "sender_id"},
		&core.TextField{Name: "body", Max: 2000},
		&core.DateField{Name: "sent_at"},
	)

	prefs := core.NewBaseCollection(NotificationPrefs)
	prefs.Fields.Add(
		&core.TextField{Name: "user_id", Required: true},
		&core.BoolField{Name: "email"},
		&core.BoolField{Name: "push"},
		&core.BoolField{Name: "sms"},
		&core.JSONField{Name: "categories"},
	)
	prefs.AddIndex("idx_notification_preferences_user", true, "user_id", "")

	promotions := core.NewBaseCollection(Promotions)
	promotions.Fields.Add(
		&core.TextField{Name: "title", Required: true},
		&core.TextField{Name: "description"},
		&core.TextField{Name: "coupon_code"},
		&core.URLField{Name: "banner_url"},
		&core.DateField{Name: "starts_at"},
		&core.DateField{Name: "ends_at"},
		&core.BoolField{Name: "published"},
	)

	return []*core.Collection{
		movies, showtimes, bookings, coupons, employees, salaries, reviews,
		tickets, reported, conversations, messages, prefs, promotions,
	}
}

// RoleField is the select field added to the users auth collection.
func RoleField() *core.SelectField {
	return &core.SelectField{
		Name:      "role",
		MaxSelect: 1,
		Values:    []string{"customer", "salesman", "moderator", "admin"},
	}
}
