package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xipc/pkg/ipc/xsock"
	"github.com/omeyang/xipc/pkg/util/xsys"
)

// daemon 持有运行中的守护进程组件。
type daemon struct {
	cfg     daemonConfig
	file    string
	level   *slog.LevelVar
	logger  *slog.Logger
	closer  io.Closer
	handler *echoHandler
	manager *xsock.Manager

	// ready 监听成功后关闭。
	ready chan struct{}
}

// newDaemon 加载配置并构造组件，不启动监听。
func newDaemon(file string, stderr io.Writer, opts ...xsock.Option) (*daemon, error) {
	cfg, err := loadConfig(file)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	logger, closer, err := buildLogger(cfg.Log, level, stderr)
	if err != nil {
		return nil, err
	}

	handler := newEchoHandler()
	opts = append([]xsock.Option{
		xsock.WithLogger(logger),
		xsock.WithShutdownTimeout(cfg.ShutdownTimeout),
	}, opts...)
	manager, err := xsock.NewManager(cfg.Socket.RunConfig(handler), opts...)
	if err != nil {
		return nil, errors.Join(err, closer.Close())
	}

	return &daemon{
		cfg:     cfg,
		file:    file,
		level:   level,
		logger:  logger,
		closer:  closer,
		handler: handler,
		manager: manager,
		ready:   make(chan struct{}),
	}, nil
}

// run 启动监听和配置监视，阻塞到 ctx 结束后优雅退出。
func (d *daemon) run(ctx context.Context) (err error) {
	defer func() { err = errors.Join(err, d.closer.Close()) }()

	d.raiseFileLimit()

	// ready 之前开始监视，之后的配置修改不会丢失
	watcher, err := newConfigWatcher(d.file, d.logger)
	if err != nil {
		return err
	}
	if err := d.manager.Start(); err != nil {
		return errors.Join(fmt.Errorf("xsockd: start: %w", err), watcher.close())
	}
	d.logger.Info("xsockd: started", slog.String("config_file", d.file), slog.String("socket", d.manager.Config().DisplayPath()))
	close(d.ready)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return d.shutdown()
	})
	g.Go(func() error {
		return watcher.run(gctx, levelReloader(d.file, d.level, d.logger))
	})
	return g.Wait()
}

// raiseFileLimit 按配置提升打开文件数限制，失败只记录日志。
func (d *daemon) raiseFileLimit() {
	if d.cfg.MaxOpenFiles == 0 {
		return
	}
	soft, err := xsys.RaiseFileLimit(d.cfg.MaxOpenFiles)
	if err != nil {
		d.logger.Warn("xsockd: raise open file limit failed", slog.Uint64("want", d.cfg.MaxOpenFiles), slog.Any("error", err))
		return
	}
	if soft < d.cfg.MaxOpenFiles {
		d.logger.Warn("xsockd: open file limit capped by hard limit", slog.Uint64("want", d.cfg.MaxOpenFiles), slog.Uint64("soft", soft))
		return
	}
	d.logger.Info("xsockd: open file limit", slog.Uint64("soft", soft))
}

// shutdown 停止监听，关闭仍在处理的连接，并等待处理器返回。
func (d *daemon) shutdown() error {
	d.logger.Info("xsockd: shutting down", slog.Int("active", d.handler.active()))

	var errs []error
	if err := d.manager.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := d.handler.closeAll(); err != nil {
		errs = append(errs, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout)
	defer cancel()
	if err := d.manager.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("xsockd: wait handlers: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		d.logger.Error("xsockd: shutdown incomplete", slog.Any("error", err))
		return err
	}
	d.logger.Info("xsockd: stopped")
	return nil
}
