// Package mqtt carries control center alerts and events onto an MQTT bus.
//
// It wraps paho.mqtt.golang for the client side and mochi-mqtt for an
// optional in-process broker, so the alert bus works on a single host
// without external infrastructure.
//
// # Topics
//
// All topics hang off the configured prefix (default "smartcity"):
//
//	smartcity/system/status        retained online/offline status (LWT)
//	smartcity/alerts/{severity}    one JSON message per alert
//	smartcity/events/{type}        one JSON message per controller event
//
// # Usage
//
//	broker, err := mqtt.StartBroker(cfg.MQTT.Embedded, log.Logger)
//	...
//	client, err := mqtt.Connect(cfg.MQTT)
//	...
//	ctrl := controller.New(controller.WithSink(
//	    mqtt.NewAlertPublisher(client, client.Topics(), byte(cfg.MQTT.QoS))))
//
// # Thread Safety
//
// All Client methods are safe for concurrent use. Message handlers run in
// paho's goroutines and recover from panics.
package mqtt
