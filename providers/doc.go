// Concrete implementations of waylib capabilities: geolocation
// databases (MaxMind GeoLite2 and plain CSV range files) and the
// production hostname resolver.
package providers
