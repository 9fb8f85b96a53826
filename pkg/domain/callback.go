package domain

const StartRecordingCallback = "start_recording"
