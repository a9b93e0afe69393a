package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/matchscout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load(ctx)

		convey.Convey("Then the defaults are returned", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
		})
	})

}

func TestLoad_Env(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given environment variables", t, func() {
		t.Setenv("MATCHSCOUT_ADDR", ":8080")
		t.Setenv("MATCHSCOUT_QUEUE_SIZE", "500")
		t.Setenv("MATCHSCOUT_WORKER_COUNT", "3")
		t.Setenv("MATCHSCOUT_SEASON", "template")
		t.Setenv("MATCHSCOUT_STRICT_EXCLUSIVITY", "true")

		cfg, err := config.Load(ctx)

		convey.Convey("Then they override the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			convey.So(cfg.Season, convey.ShouldEqual, "template")
			convey.So(cfg.StrictExclusivity, convey.ShouldBeTrue)
		})
	})

}

func TestLoad_FileAndEnv(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a YAML file and an environment override", t, func() {
		path := writeConfig(t, `
addr: ":9090"
queue_size: 300
store_driver: sqlite
store_path: /tmp/scouting.db
log_format: json
`)
		t.Setenv("MATCHSCOUT_CONFIG", path)
		t.Setenv("MATCHSCOUT_QUEUE_SIZE", "700")

		cfg, err := config.Load(ctx)

		convey.Convey("Then the file applies and env wins over it", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 700)
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreSQLite)
			convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/scouting.db")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
		})
	})

}

func TestLoad_MissingFile(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a missing config file", t, func() {
		t.Setenv("MATCHSCOUT_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

		_, err := config.Load(ctx)

		convey.Convey("Then loading fails", func() {
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})

}

func TestLoad_InvalidOverride(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an invalid override", t, func() {
		t.Setenv("MATCHSCOUT_STORE_DRIVER", "redis")

		_, err := config.Load(ctx)

		convey.Convey("Then validation fails", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
