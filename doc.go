// wayfinder is a service which, given a client and a list of
// interchangeable replica hosts, answers which host is geographically
// nearest to that client.
//
// Content distribution frontends ask it for an ordering of their
// candidate hosts and redirect the client to the first one. All the
// actual logic lives in the waylib package; this binary only wires
// geolocation databases, the system resolver and an HTTP server around
// it.
//
// Configuration is a single HJSON file:
//
//	{
//	  listen: "127.0.0.1:8000"
//	  root_directory: /var/lib/wayfinder
//	  addr_cache: {
//	    size: 4096
//	    ttl: 1h
//	  }
//	  databases: {
//	    v4: {
//	      type: maxmind_lite
//	      license_key: xxx
//	    }
//	    v6: {
//	      type: maxmind_lite
//	      license_key: xxx
//	    }
//	  }
//	}
package main
