// Package metrics exposes session lifecycle outcomes as Prometheus collectors.
//
// Collector implements authsession.Recorder. Pass it to the Manager and
// register it with any prometheus.Registerer:
//
//	c := metrics.NewCollector("authclient")
//	c.MustRegister(prometheus.DefaultRegisterer)
//	mgr := authsession.New(backend, store, authsession.WithRecorder(c))
//
// Outcomes are labelled with authsession.ErrorKind ("ok", "superseded",
// "session_expired" and so on). The session_status gauge is 1 for the
// current status and 0 for every other one.
package metrics
