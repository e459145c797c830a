package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vidra-cli/vidra/filesystem"
	"github.com/vidra-cli/vidra/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Setup", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("Registers every defined field", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("Applies factory defaults", func() {
			So(viper.GetString(key.Player), ShouldEqual, "mpv")
			So(viper.GetInt(key.PlayerOverlayTimeout), ShouldEqual, 5)
			So(viper.GetInt(key.PlayerConfirmCloseTimeout), ShouldEqual, 2)
		})
	})
}
