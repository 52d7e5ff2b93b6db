//go:build linux && cgo

package desktop

/*
#cgo CFLAGS: -I/usr/include
#cgo LDFLAGS: -lX11 -lXext -lXfixes

#include <X11/Xlib.h>
#include <X11/extensions/XShm.h>
#include <X11/extensions/Xfixes.h>
#include <sys/ipc.h>
#include <sys/shm.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
    Display* display;
    Window root;
    int screen;
    int width;
    int height;
    int useShm;
    XShmSegmentInfo shmInfo;
    XImage* image;
} x11Context;

static int x11Init(x11Context* ctx, int displayIndex) {
    ctx->display = XOpenDisplay(NULL);
    if (ctx->display == NULL) return 1;

    ctx->screen = displayIndex;
    if (ctx->screen >= ScreenCount(ctx->display)) {
        ctx->screen = DefaultScreen(ctx->display);
    }
    ctx->root = RootWindow(ctx->display, ctx->screen);
    ctx->width = DisplayWidth(ctx->display, ctx->screen);
    ctx->height = DisplayHeight(ctx->display, ctx->screen);

    int major, minor;
    Bool pixmaps;
    if (XShmQueryVersion(ctx->display, &major, &minor, &pixmaps)) {
        ctx->image = XShmCreateImage(ctx->display, DefaultVisual(ctx->display, ctx->screen),
            DefaultDepth(ctx->display, ctx->screen), ZPixmap, NULL, &ctx->shmInfo,
            ctx->width, ctx->height);
        if (ctx->image != NULL) {
            ctx->shmInfo.shmid = shmget(IPC_PRIVATE, ctx->image->bytes_per_line * ctx->image->height, IPC_CREAT | 0777);
            if (ctx->shmInfo.shmid >= 0) {
                ctx->shmInfo.shmaddr = ctx->image->data = shmat(ctx->shmInfo.shmid, 0, 0);
                ctx->shmInfo.readOnly = False;
                if (XShmAttach(ctx->display, &ctx->shmInfo)) {
                    ctx->useShm = 1;
                    XFixesQueryExtension(ctx->display, &major, &minor);
                    return 0;
                }
            }
            XDestroyImage(ctx->image);
            ctx->image = NULL;
        }
    }
    return 2;
}

static void x11Close(x11Context* ctx) {
    if (ctx->image != NULL) {
        XShmDetach(ctx->display, &ctx->shmInfo);
        shmdt(ctx->shmInfo.shmaddr);
        shmctl(ctx->shmInfo.shmid, IPC_RMID, 0);
        XDestroyImage(ctx->image);
    }
    if (ctx->display != NULL) {
        XCloseDisplay(ctx->display);
    }
    memset(ctx, 0, sizeof(*ctx));
}

// x11Grab captures [x,y,w,h) into the attached SHM buffer and composites the
// XFixes cursor on top, in place, matching the reference blend exactly.
// Returns 0 on success, nonzero on failure. The caller copies
// ctx->image->data (packed BGRX, bytes_per_line stride) out after this call.
static int x11Grab(x11Context* ctx, int x, int y, int w, int h) {
    if (!XShmGetImage(ctx->display, ctx->root, ctx->image, x, y, AllPlanes)) {
        return 1;
    }

    XFixesCursorImage *cursor = XFixesGetCursorImage(ctx->display);
    if (cursor != NULL) {
        int cursorX = (int)cursor->x - (int)cursor->xhot - x;
        int cursorY = (int)cursor->y - (int)cursor->yhot - y;

        for (int j = 0; j < cursor->height; j++) {
            int imgY = cursorY + j;
            if (imgY < 0 || imgY >= h) continue;
            for (int i = 0; i < cursor->width; i++) {
                int imgX = cursorX + i;
                if (imgX < 0 || imgX >= w) continue;

                unsigned long cursorPixel = cursor->pixels[j * cursor->width + i];
                unsigned char alpha = (cursorPixel >> 24) & 0xFF;
                if (alpha == 0) continue;
                unsigned char cr = (cursorPixel >> 16) & 0xFF;
                unsigned char cg = (cursorPixel >> 8) & 0xFF;
                unsigned char cb = cursorPixel & 0xFF;

                unsigned int *px = (unsigned int*)(ctx->image->data + imgY * ctx->image->bytes_per_line + imgX * 4);
                unsigned char ir = (*px >> 16) & 0xFF;
                unsigned char ig = (*px >> 8) & 0xFF;
                unsigned char ib = *px & 0xFF;

                unsigned char nr = (cr * alpha + ir * (255 - alpha)) / 255;
                unsigned char ng = (cg * alpha + ig * (255 - alpha)) / 255;
                unsigned char nb = (cb * alpha + ib * (255 - alpha)) / 255;

                *px = (nr << 16) | (ng << 8) | nb;
            }
        }
        XFree(cursor);
    }
    return 0;
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

type x11Grabber struct {
	mu  sync.Mutex
	ctx C.x11Context
}

func newPlatformGrabber(displayIndex int) (ScreenGrabber, error) {
	g := &x11Grabber{}
	if rc := C.x11Init(&g.ctx, C.int(displayIndex)); rc != 0 {
		return nil, ErrCaptureFailed
	}
	return g, nil
}

// Grab captures rect and copies the packed BGRX SHM buffer into dst.Pix.
// rect is clamped to the display bounds the way the reference prototype
// clamps its fixed capture rectangle.
func (g *x11Grabber) Grab(rect Rect, dst *RawFrame) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	w, h := rect.W, rect.H
	if int(g.ctx.width) < rect.X+w {
		w = int(g.ctx.width) - rect.X
	}
	if int(g.ctx.height) < rect.Y+h {
		h = int(g.ctx.height) - rect.Y
	}

	if rc := C.x11Grab(&g.ctx, C.int(rect.X), C.int(rect.Y), C.int(w), C.int(h)); rc != 0 {
		return ErrCaptureFailed
	}

	stride := int(g.ctx.image.bytes_per_line)
	src := unsafe.Slice((*byte)(unsafe.Pointer(g.ctx.image.data)), stride*h)
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], src[y*stride:y*stride+w*4])
	}
	return nil
}

func (g *x11Grabber) Bounds() (int, int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return int(g.ctx.width), int(g.ctx.height), nil
}

func (g *x11Grabber) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	C.x11Close(&g.ctx)
	return nil
}

var _ ScreenGrabber = (*x11Grabber)(nil)
