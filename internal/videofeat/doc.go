// Package videofeat samples fixed-size frame stacks from video files.
//
// ffprobe reports the source frame count, ffmpeg decodes the selected frames
// as raw pixels with bicubic spatial resizing, and the decoded stack is
// reordered so the time axis sits between the spatial axes and the channel
// axis. Each decode is a short-lived child process, so the decoder handle is
// released on every exit path by construction.
package videofeat
