// This package contains the core logic of the wayfinder project: given
// a client location and a list of interchangeable replica hosts, it
// orders the hosts by great-circle proximity so the client can be
// redirected to the nearest one.
//
// waylib performs no network I/O of its own. Hostname resolution and
// IP geolocation are injected capabilities (Resolver and Database);
// the rest of the application is an _example_ of how to wire them: how
// to load databases, how to pass parameters from HTTP requests, how to
// generate redirects.
//
// Wayfinder is the main entity of waylib. It owns the worker pool used
// to resolve candidate hosts concurrently and the per-hostname location
// cache that keeps selection working through resolver or database
// outages.
package waylib
