package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	UpvoteDirectionAdded   = "added"
	UpvoteDirectionRemoved = "removed"
)

// ComplaintMetrics tracks complaint intake and workflow activity.
type ComplaintMetrics struct {
	created         *prometheus.CounterVec
	routingFailures *prometheus.CounterVec
	upvotes         *prometheus.CounterVec
	transitions     *prometheus.CounterVec
}

// NewComplaintMetrics registers the complaint metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewComplaintMetrics(reg prometheus.Registerer) *ComplaintMetrics {
	if reg == nil {
		return &ComplaintMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_created_total",
		Help: "Complaints filed, by location category.",
	}, []string{"category"})
	routingFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_routing_failures_total",
		Help: "Complaints rejected because no incharge covers the location.",
	}, []string{"category"})
	upvotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_upvote_toggles_total",
		Help: "Upvote toggles, by direction.",
	}, []string{"direction"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_transitions_total",
		Help: "Workflow transitions, by action.",
	}, []string{"action"})
	reg.MustRegister(created, routingFailures, upvotes, transitions)
	return &ComplaintMetrics{
		created:         created,
		routingFailures: routingFailures,
		upvotes:         upvotes,
		transitions:     transitions,
	}
}

func (c *ComplaintMetrics) IncCreated(category string) {
	if c == nil || c.created == nil {
		return
	}
	c.created.WithLabelValues(categoryLabel(category)).Inc()
}

// IncRoutingFailure counts a complaint that could not be routed. Pass "" when
// the location itself did not resolve; it is recorded as "unknown".
func (c *ComplaintMetrics) IncRoutingFailure(category string) {
	if c == nil || c.routingFailures == nil {
		return
	}
	c.routingFailures.WithLabelValues(categoryLabel(category)).Inc()
}

func (c *ComplaintMetrics) IncUpvoteToggle(added bool) {
	if c == nil || c.upvotes == nil {
		return
	}
	direction := UpvoteDirectionRemoved
	if added {
		direction = UpvoteDirectionAdded
	}
	c.upvotes.WithLabelValues(direction).Inc()
}

func (c *ComplaintMetrics) IncTransition(action string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(action)).Inc()
}

// Categories come from stored locations, never from request input. They are
// folded to lower case so "Hostel" and "hostel" share a series.
func categoryLabel(category string) string {
	return normalizeLabel(strings.ToLower(strings.TrimSpace(category)))
}
