package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "employeesapp_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "method", "code"},
	)

	AntiForgeryRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "employeesapp_antiforgery_rejections_total",
			Help: "Total number of POSTs rejected by anti-forgery validation",
		},
		[]string{"reason"},
	)

	EmployeesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "employeesapp_employees_created_total",
			Help: "Total number of employees created",
		},
	)
)
