package rcon_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pavlovrcon/rcon"
)

func ExampleHashPassword() {
	fmt.Println(rcon.HashPassword("password"))

	// Output:
	// 5f4dcc3b5aa765d61d8327deb882cf99
}

func ExampleTagOf() {
	fmt.Println(rcon.TagOf("Kick 76561198000000000"))
	fmt.Println(rcon.TagOf("  ServerInfo  "))

	// Output:
	// Kick
	// ServerInfo
}

func ExampleClient_Invoke() {
	c := rcon.New(rcon.Config{
		Host:     "192.0.2.1",
		Port:     9100,
		Password: "super secret password",
		Timeout:  5 * time.Second,
	})
	defer c.Close()

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		log.Fatal(err)
	}

	msg, err := c.Invoke(ctx, "Kick 76561198000000000", "Kick")
	if errors.Is(err, rcon.ErrNoResponse) {
		log.Fatal("server did not answer in time")
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(msg.Command, msg.Successful)
}

func ExampleClient_InvokeInto() {
	c, err := rcon.Dial(context.Background(), rcon.Config{
		Host:     "192.0.2.1",
		Port:     9100,
		Password: "super secret password",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	var resp struct {
		ServerInfo struct {
			MapLabel    string
			PlayerCount string
		}
	}
	if err := c.InvokeInto(context.Background(), "ServerInfo", "", &resp); err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.ServerInfo.MapLabel, resp.ServerInfo.PlayerCount)
}
