package importcfg

// GetImportConfigName returns the import config path named by the generator
// settings at settingsPath (item.config.file), or "" if it cannot be read.
func (w *Worker) GetImportConfigName(settingsPath string) string {
	doc, err := w.LoadDocument(settingsPath)
	if err != nil {
		w.log.Debug("Generator settings not loaded", "path", settingsPath, "error", err)
		return ""
	}

	item, err := objectAt(doc, "item")
	if err != nil {
		return ""
	}
	config, err := objectAt(item, "config")
	if err != nil {
		return ""
	}
	name, err := stringAt(config, "file")
	if err != nil {
		return ""
	}
	return name
}
