// Package crawlers 实现浏览器侧的全部能力: 浏览器进程管理(manager)、
// CDP会话封装(session)、点击落点标签页识别(resolver)、离线链接提取
// (extractor)和页面快照存储(store)。
//
// 约定: 页面加载一律通过浏览器完成,提取器只解析已落盘的HTML,
// 不发起任何网络请求; 磁盘写入集中在SnapshotStore。
package crawlers
