// Package announce publishes session state to an MQTT broker.
//
// Announcements are advisory: a down broker never blocks a scene
// switch. Topics are retained and carry a Last Will and Testament so
// dashboards can distinguish a crash from a graceful shutdown.
package announce
