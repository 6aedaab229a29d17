package clickhouse

import (
	"net/url"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(ClientConfig{
		Host:        "ch.local",
		Port:        9000,
		Database:    "signaldesk",
		User:        "reader",
		Password:    "p@ss",
		DialTimeout: 5 * time.Second,
		MaxExecTime: 30 * time.Second,
	})

	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("parse %q: %v", dsn, err)
	}
	if u.Scheme != "clickhouse" || u.Host != "ch.local:9000" || u.Path != "/signaldesk" {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if pw, _ := u.User.Password(); pw != "p@ss" || u.User.Username() != "reader" {
		t.Fatalf("credentials not preserved in %q", dsn)
	}
	q := u.Query()
	if q.Get("dial_timeout") != "5s" || q.Get("max_execution_time") != "30" || q.Has("read_timeout") {
		t.Fatalf("unexpected query %v", q)
	}

	if u, _ := url.Parse(BuildDSN(ClientConfig{Host: "h", Port: 8123, UseHTTP: true})); u.Scheme != "http" {
		t.Fatalf("http scheme not applied: %v", u)
	}
}
