package main

import (
	"flag"
	"log"
	"os"
	"reflect"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/rcvehicle/pkg/uplink/mqtt"
	"github.com/robotalks/rcvehicle/pkg/uplink/msgs"
)

var (
	mqttURL = mqtt.DefaultURL
	filter  = "vehicle/#"
)

func init() {
	if val := os.Getenv("RC_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&filter, "topic", filter, "Topic filter, relative to the URL path.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub(filter, mqtt.Handler(func(topic string, payload []byte) {
		if len(payload) == 0 {
			log.Printf("%s: (cleared)", topic)
			return
		}
		msg, err := msgs.Decode(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			proto.CompactTextString(msg))
	}))
	<-(chan struct{})(nil)
}
