package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/region"
	"github.com/astei/anvilkit/schematic"
	"github.com/astei/anvilkit/world"
)

// session is what Before hands to every command.
type session struct {
	log    *zap.Logger
	config Config
	world  string
}

const sessionKey = "session"

func getSession(c *cli.Context) *session {
	return c.App.Metadata[sessionKey].(*session)
}

func main() {
	app := &cli.App{
		Name:  "anvilkit",
		Usage: "inspect and edit Minecraft region worlds",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug log output"},
			&cli.StringFlag{Name: "config", Value: defaultConfigPath, Usage: "config file"},
			&cli.StringFlag{Name: "world", Aliases: []string{"w"}, Usage: "region directory, overrides world-dir"},
		},
		Metadata: map[string]interface{}{},
		Before:   before,
		After: func(c *cli.Context) error {
			if s, ok := c.App.Metadata[sessionKey].(*session); ok {
				_ = s.log.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "dump",
				Usage:     "print a tag tree",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "compression", Value: "gzip", Usage: "framing of FILE (none, gzip, zlib, deflate)"},
					&cli.IntFlag{Name: "x", Usage: "region-relative chunk x, for region files"},
					&cli.IntFlag{Name: "z", Usage: "region-relative chunk z, for region files"},
				},
				Action: dumpCommand,
			},
			{
				Name:   "verify",
				Usage:  "check every chunk of the world against its schema",
				Action: verifyCommand,
			},
			{
				Name:      "setblock",
				Usage:     "set a block in the world",
				ArgsUsage: "X Y Z ID [DATA]",
				Action:    setBlockCommand,
			},
			{
				Name:      "export-schematic",
				Usage:     "copy a box of the world into a schematic file",
				ArgsUsage: "X Y Z WIDTH HEIGHT LENGTH OUT",
				Action:    exportSchematicCommand,
			},
			{
				Name:      "export-slime",
				Usage:     "pack the world into a slime archive",
				ArgsUsage: "OUT",
				Action:    exportSlimeCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func before(c *cli.Context) error {
	var logger *zap.Logger
	if c.Bool("debug") {
		logger = unwrap(zap.NewDevelopment())
	} else {
		logger = unwrap(zap.NewProduction())
	}

	config, err := readConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		logger.Error("Read config fail", zap.Error(err))
		return err
	}

	dir := config.WorldDir
	if c.IsSet("world") {
		dir = c.String("world")
	}
	c.App.Metadata[sessionKey] = &session{log: logger, config: config, world: dir}
	return nil
}

// intArgs parses the first n positional arguments as integers.
func intArgs(c *cli.Context, n int) ([]int, error) {
	if c.NArg() < n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, c.NArg())
	}
	out := make([]int, n)
	for i := range out {
		v, err := strconv.Atoi(c.Args().Get(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func dumpCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("dump: missing FILE", 2)
	}

	var tree *nbt.Tree
	if isRegionFile(path) {
		reader, err := region.OpenReader(path)
		if err != nil {
			return err
		}
		defer reader.Close()
		if tree, err = reader.ReadTree(c.Int("x"), c.Int("z")); err != nil {
			return err
		}
	} else {
		compression, err := nbt.ParseCompression(c.String("compression"))
		if err != nil {
			return err
		}
		if tree, err = nbt.NewFile(path, compression).Load(); err != nil {
			return err
		}
	}
	return nbt.Dump(os.Stdout, tree.Name, tree.Root)
}

func verifyCommand(c *cli.Context) error {
	s := getSession(c)
	w, err := OpenAnvilWorld(s.world, scanOptions{safe: true, workers: s.config.Workers, log: s.log})
	if err != nil {
		return err
	}
	if w.Invalid() > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d chunks are invalid", w.Invalid(), w.Invalid()+w.Len()), 1)
	}
	s.log.Info("world verified", zap.Int("chunks", w.Len()))
	return nil
}

func (s *session) blockManager(create bool) (*region.Store, *world.BlockManager, error) {
	opts := append(s.config.storeOptions(), region.WithLogger(s.log), region.WithCreate(create))
	store, err := region.NewStore(s.world, opts...)
	if err != nil {
		return nil, nil, err
	}
	m := world.NewBlockManager(store,
		world.WithLogger(s.log),
		world.WithFormat(s.config.Format),
		world.WithAutoFlags(s.config.autoFlags()))
	return store, m, nil
}

func setBlockCommand(c *cli.Context) (errRet error) {
	s := getSession(c)
	args, err := intArgs(c, 4)
	if err != nil {
		return err
	}
	store, m, err := s.blockManager(true)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); errRet == nil && err != nil {
			errRet = fmt.Errorf("save world fail: %w", err)
		}
	}()

	x, y, z := args[0], args[1], args[2]
	if err := m.SetID(x, y, z, args[3]); err != nil {
		return err
	}
	if c.NArg() > 4 {
		v, err := strconv.Atoi(c.Args().Get(4))
		if err != nil {
			return fmt.Errorf("argument 5: %w", err)
		}
		if err := m.SetData(x, y, z, v); err != nil {
			return err
		}
	}
	s.log.Info("block set", zap.Int("x", x), zap.Int("y", y), zap.Int("z", z), zap.Int("id", args[3]))
	return nil
}

func exportSchematicCommand(c *cli.Context) error {
	s := getSession(c)
	args, err := intArgs(c, 6)
	if err != nil {
		return err
	}
	out := c.Args().Get(6)
	if out == "" {
		return cli.Exit("export-schematic: missing OUT", 2)
	}
	// Nothing is written back, so the store is never closed.
	_, m, err := s.blockManager(false)
	if err != nil {
		return err
	}
	sc, err := schematic.Export(m, args[0], args[1], args[2], args[3], args[4], args[5])
	if err != nil {
		return err
	}
	if err := sc.Save(out); err != nil {
		return err
	}
	s.log.Info("schematic exported", zap.String("file", out),
		zap.Int("tileEntities", sc.Blocks().TileEntities().Len()),
		zap.Int("entities", sc.Entities().Len()))
	return nil
}

func exportSlimeCommand(c *cli.Context) (errRet error) {
	s := getSession(c)
	out := c.Args().First()
	if out == "" {
		return cli.Exit("export-slime: missing OUT", 2)
	}
	w, err := OpenAnvilWorld(s.world, scanOptions{workers: s.config.Workers, log: s.log})
	if err != nil {
		return err
	}

	file, err := os.Create(filepath.Clean(out))
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); errRet == nil && err != nil {
			errRet = err
		}
	}()
	writer := bufio.NewWriter(file)
	if err := w.WriteAsSlime(writer); err != nil {
		return fmt.Errorf("could not write slime world: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	s.log.Info("slime world written", zap.String("file", out), zap.Int("chunks", w.Len()))
	return nil
}

func unwrap[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
