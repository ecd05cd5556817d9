package main

import "mdchat/internal/logger"

var log = logger.Named("cli")
