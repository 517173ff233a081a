package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/robotalks/rcvehicle/pkg/cli/sh"
	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/joystick"
	"github.com/robotalks/rcvehicle/pkg/radio"
	"github.com/robotalks/rcvehicle/pkg/radio/netradio"
	"github.com/robotalks/rcvehicle/pkg/transmitter"
)

var (
	vehicleURL  = "tcp://localhost:4150"
	identity    = 1
	address     string
	period      = transmitter.DefaultPeriod
	useJoystick bool
)

func init() {
	if val := os.Getenv("RC_VEHICLE_URL"); val != "" {
		vehicleURL = val
	}
	flag.StringVar(&vehicleURL, "url", vehicleURL, "Vehicle URL, tcp://host:port or ws://host:port/radio.")
	flag.IntVar(&identity, "identity", identity, "Vehicle identity (1-5) selecting the radio address.")
	flag.StringVar(&address, "address", address, "Radio address in hex, overrides identity.")
	flag.DurationVar(&period, "period", period, "Command transmission period.")
	flag.BoolVar(&useJoystick, "joystick", useJoystick, "Start with joystick input.")
	joystick.SetupFlags()
}

func main() {
	flag.Parse()

	addr, err := radio.Identity(identity).Address(radio.DefaultAddresses)
	if address != "" {
		addr, err = radio.ParseAddress(address)
	}
	if err != nil {
		log.Fatalln(err)
	}
	conn, err := netradio.Dial(vehicleURL)
	if err != nil {
		log.Fatalln(err)
	}

	tx := transmitter.New(netradio.NewTransmitter(conn, addr), period)
	loop := fx.NewLoop().Add(tx)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.RunOrFail(ctx)
	}()

	s := sh.New(tx)
	s.Joystick = joystick.Default()
	if useJoystick {
		s.StartJoystick()
	}
	s.Run(flag.Args()...)
	s.StopJoystick()
	cancel()
	<-done
}
